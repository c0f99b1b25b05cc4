// Package routes defines the HTTP routes for the document store service.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/docstorehq/docstore-service/internal/api/handlers"
	"github.com/docstorehq/docstore-service/internal/api/middleware"
)

// Config holds the dependencies for setting up routes.
type Config struct {
	HealthHandler    *handlers.HealthHandler
	DocumentsHandler *handlers.DocumentsHandler
}

// Setup configures all routes on the Gin engine.
func Setup(r *gin.Engine, cfg *Config) {
	v1 := r.Group("/api/v1/docstore")
	{
		// Health check routes
		v1.GET("/health", cfg.HealthHandler.Health)
		v1.GET("/ready", cfg.HealthHandler.Ready)
		v1.GET("/live", cfg.HealthHandler.Live)

		// Database-scoped routes
		databases := v1.Group("/databases/:database")
		{
			databases.GET("/collections", cfg.DocumentsHandler.ListCollections)

			collections := databases.Group("/collections/:collection")
			{
				collections.POST("/query", cfg.DocumentsHandler.Query)
				collections.POST("/documents", cfg.DocumentsHandler.Insert)
				collections.PATCH("/documents", cfg.DocumentsHandler.Update)
				collections.DELETE("/documents", cfg.DocumentsHandler.Delete)
			}
		}
	}

	r.NoRoute(middleware.NotFound())
}

// SetupWithMiddleware sets up routes with common middleware.
func SetupWithMiddleware(r *gin.Engine, cfg *Config, loggingMw *middleware.LoggingMiddleware, errorMw *middleware.ErrorMiddleware) {
	r.Use(loggingMw.Logger())
	r.Use(loggingMw.RequestLogger())
	r.Use(errorMw.Recovery())
	r.Use(gin.Recovery())
	r.Use(middleware.NewCORSMiddleware(middleware.DefaultCORSConfig()))

	Setup(r, cfg)
}
