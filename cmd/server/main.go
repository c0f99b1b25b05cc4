// Package main is the entry point for the Document Store Service.
// @title Document Store Service API
// @version 1.0
// @description Thin CRUD passthrough over a document database, scoped by database and collection name.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1/docstore
// @schemes http https
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/docstorehq/docstore-service/docs"
	"github.com/docstorehq/docstore-service/internal/api/handlers"
	"github.com/docstorehq/docstore-service/internal/api/middleware"
	"github.com/docstorehq/docstore-service/internal/api/routes"
	"github.com/docstorehq/docstore-service/internal/config"
	"github.com/docstorehq/docstore-service/internal/core/cache"
	"github.com/docstorehq/docstore-service/internal/core/docdb"
	noopcache "github.com/docstorehq/docstore-service/internal/infrastructure/cache/noop"
	rediscache "github.com/docstorehq/docstore-service/internal/infrastructure/cache/redis"
	"github.com/docstorehq/docstore-service/internal/infrastructure/docdb/memory"
	"github.com/docstorehq/docstore-service/internal/infrastructure/docdb/mongodb"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogger(cfg.Log)

	// Build the document store handle. Construction performs no I/O; the
	// eager connect below surfaces bad URIs at startup instead of on the
	// first request.
	connector, err := createConnector(cfg.DocDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize docdb connector")
	}

	handle := docdb.NewHandle(connector, docdb.WithLogger(log.Logger))

	connectCtx, cancel := context.WithTimeout(context.Background(), cfg.DocDB.ConnectTimeout)
	if err := handle.Connect(connectCtx); err != nil {
		cancel()
		log.Fatal().Err(err).Str("type", cfg.DocDB.Type).Msg("failed to connect to document store")
	}
	cancel()

	cacheClient, err := createCacheClient(cfg.Cache)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize cache client")
	}

	gin.SetMode(cfg.Server.GinMode)
	router := setupRouter(handle, cacheClient)

	srv := &http.Server{
		Addr:    cfg.Server.Address(),
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Address()).Str("docdb", cfg.DocDB.Type).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	if err := handle.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to close document store handle")
	}
	if err := cacheClient.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close cache client")
	}

	log.Info().Msg("server exited")
}

// setupLogger configures the global zerolog logger.
func setupLogger(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// createConnector creates a docdb connector based on the configuration.
func createConnector(cfg config.DocDBConfig) (docdb.Connector, error) {
	switch docdb.Type(cfg.Type) {
	case docdb.TypeMongoDB:
		return mongodb.NewConnector(&mongodb.Config{URI: cfg.URI})
	case docdb.TypeCosmosDB:
		// CosmosDB speaks the MongoDB protocol, so the same connector works
		return mongodb.NewConnector(&mongodb.Config{URI: cfg.URI})
	case docdb.TypeMemory:
		return memory.NewConnector(), nil
	default:
		log.Fatal().Str("type", cfg.Type).Msg("unsupported docdb type")
		return nil, nil
	}
}

// createCacheClient creates a cache client based on the configuration.
func createCacheClient(cfg config.CacheConfig) (cache.Client, error) {
	if !cfg.Enabled {
		return noopcache.NewClient(), nil
	}

	return rediscache.NewClient(rediscache.Config{
		Host:       cfg.Host,
		Port:       cfg.Port,
		Password:   cfg.Password,
		DB:         cfg.DB,
		DefaultTTL: cfg.TTL,
	})
}

// setupRouter creates and configures the Gin router.
func setupRouter(handle *docdb.Handle, cacheClient cache.Client) *gin.Engine {
	router := gin.New()

	loggingMw := middleware.NewLoggingMiddleware()
	errorMw := middleware.NewErrorMiddleware()

	healthHandler := handlers.NewHealthHandler(handle, cacheClient)
	documentsHandler := handlers.NewDocumentsHandler(handle, cacheClient)

	routesCfg := &routes.Config{
		HealthHandler:    healthHandler,
		DocumentsHandler: documentsHandler,
	}

	routes.SetupWithMiddleware(router, routesCfg, loggingMw, errorMw)

	// Swagger documentation endpoint
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return router
}
