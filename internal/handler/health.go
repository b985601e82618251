package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// healthCheckTimeout bounds the database ping performed by the health check.
const healthCheckTimeout = 2 * time.Second

// Pinger verifies connectivity to a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	service string
	version string
	db      Pinger
}

// NewHealthHandler creates a HealthHandler reporting the given service identity.
func NewHealthHandler(service, version string, db Pinger) *HealthHandler {
	return &HealthHandler{service: service, version: version, db: db}
}

// HealthCheck returns service health status including database reachability.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	checks := gin.H{"database": "healthy"}
	if err := h.db.Ping(ctx); err != nil {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
		checks["database"] = "unhealthy"
	}

	c.JSON(code, gin.H{
		"status":    status,
		"service":   h.service,
		"version":   h.version,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
