// Package handler contains the gin HTTP handlers for the readlist API.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/readlist/internal/domain"
	"github.com/jonesrussell/north-cloud/readlist/internal/favicon"
	"github.com/jonesrussell/north-cloud/readlist/internal/logger"
	"github.com/jonesrussell/north-cloud/readlist/internal/middleware"
)

// Saver runs the save pipeline for one URL.
type Saver interface {
	Save(ctx context.Context, ownerID, rawURL string) (*domain.Item, error)
}

// ItemStore provides the owner-scoped read/update/delete operations.
type ItemStore interface {
	List(ctx context.Context, ownerID string) ([]domain.Item, error)
	Update(ctx context.Context, ownerID, id string, patch domain.ItemPatch) (*domain.Item, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// ItemsHandler handles item CRUD requests.
type ItemsHandler struct {
	saver    Saver
	store    ItemStore
	favicons *favicon.Cache
	log      logger.Logger
}

// NewItemsHandler creates an ItemsHandler with the given dependencies.
func NewItemsHandler(saver Saver, store ItemStore, favicons *favicon.Cache, log logger.Logger) *ItemsHandler {
	return &ItemsHandler{
		saver:    saver,
		store:    store,
		favicons: favicons,
		log:      log,
	}
}

// saveRequest is the POST /items body.
type saveRequest struct {
	URL string `json:"url"`
}

// itemResponse decorates an item with its derived favicon URL for display.
type itemResponse struct {
	domain.Item
	Favicon string `json:"favicon,omitempty"`
}

// Save handles POST /items: save a new link.
func (h *ItemsHandler) Save(c *gin.Context) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	item, err := h.saver.Save(c.Request.Context(), ownerID, req.URL)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidURL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid url"})
			return
		}
		h.log.Error("Save failed", logger.String("url", req.URL), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.JSON(http.StatusCreated, h.decorate(*item))
}

// List handles GET /items: all of the owner's items, newest first.
func (h *ItemsHandler) List(c *gin.Context) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	items, err := h.store.List(c.Request.Context(), ownerID)
	if err != nil {
		h.log.Error("List failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	responses := make([]itemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, h.decorate(item))
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, responses)
}

// Update handles PATCH /items/:id: flag updates. Only boolean isRead and
// isFavorite values are honored; anything else in the body is ignored.
func (h *ItemsHandler) Update(c *gin.Context) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	patch := buildPatch(body)
	if patch.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid updates provided"})
		return
	}

	item, err := h.store.Update(c.Request.Context(), ownerID, c.Param("id"), patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		h.log.Error("Update failed", logger.String("id", c.Param("id")), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.JSON(http.StatusOK, h.decorate(*item))
}

// Delete handles DELETE /items/:id. Deleting a missing or foreign id
// succeeds: delete is idempotent.
func (h *ItemsHandler) Delete(c *gin.Context) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.store.Delete(c.Request.Context(), ownerID, c.Param("id")); err != nil {
		h.log.Error("Delete failed", logger.String("id", c.Param("id")), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// buildPatch extracts the whitelisted boolean fields from a request body.
func buildPatch(body map[string]any) domain.ItemPatch {
	var patch domain.ItemPatch

	if v, ok := body["isRead"].(bool); ok {
		patch.IsRead = &v
	}
	if v, ok := body["isFavorite"].(bool); ok {
		patch.IsFavorite = &v
	}

	return patch
}

// decorate attaches the favicon URL for the item's domain.
func (h *ItemsHandler) decorate(item domain.Item) itemResponse {
	return itemResponse{
		Item:    item,
		Favicon: h.favicons.URL(item.Domain),
	}
}
