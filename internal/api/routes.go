package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/readlist/internal/handler"
	"github.com/jonesrussell/north-cloud/readlist/internal/middleware"
)

// SetupRoutes configures all API routes. Item routes require a resolved
// owner identity; the save route is additionally rate limited because it
// triggers an outbound page fetch.
func SetupRoutes(
	router *gin.Engine,
	items *handler.ItemsHandler,
	health *handler.HealthHandler,
	jwtSecret string,
	maxSavesPerMin int,
	rateLimitWindow time.Duration,
) {
	router.GET("/health", health.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Identity(jwtSecret))

	v1.GET("/items", items.List)
	v1.PATCH("/items/:id", items.Update)
	v1.DELETE("/items/:id", items.Delete)

	save := v1.Group("")
	save.Use(middleware.RateLimiter(maxSavesPerMin, rateLimitWindow))
	save.POST("/items", items.Save)
}
