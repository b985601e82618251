// Package domain holds the core readlist types shared across layers.
package domain

import (
	"errors"
	"time"
)

// Sentinel errors returned by the storage and service layers.
var (
	// ErrNotFound indicates the item does not exist or is not owned by the caller.
	ErrNotFound = errors.New("item not found")
	// ErrInvalidURL indicates the submitted URL does not parse as an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
	// ErrNoUpdates indicates an update request carried no recognized boolean field.
	ErrNoUpdates = errors.New("no valid updates provided")
)

// Item is one saved link with its extracted preview metadata.
type Item struct {
	ID          string     `db:"id"          json:"id"`
	OwnerID     string     `db:"owner_id"    json:"ownerId"`
	URL         string     `db:"url"         json:"url"`
	Domain      string     `db:"domain"      json:"domain"`
	Title       *string    `db:"title"       json:"title"`
	Description *string    `db:"description" json:"description"`
	Image       *string    `db:"image"       json:"image"`
	IsRead      bool       `db:"is_read"     json:"isRead"`
	IsFavorite  bool       `db:"is_favorite" json:"isFavorite"`
	CreatedAt   time.Time  `db:"created_at"  json:"createdAt"`
	ReadAt      *time.Time `db:"read_at"     json:"readAt"`
}

// ItemPatch carries the whitelisted flag updates. A nil field is left untouched.
type ItemPatch struct {
	IsRead     *bool `json:"isRead,omitempty"`
	IsFavorite *bool `json:"isFavorite,omitempty"`
}

// Empty reports whether the patch carries no updates.
func (p ItemPatch) Empty() bool {
	return p.IsRead == nil && p.IsFavorite == nil
}
