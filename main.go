package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/jonesrussell/north-cloud/readlist/internal/api"
	"github.com/jonesrussell/north-cloud/readlist/internal/cache"
	"github.com/jonesrussell/north-cloud/readlist/internal/config"
	"github.com/jonesrussell/north-cloud/readlist/internal/favicon"
	"github.com/jonesrussell/north-cloud/readlist/internal/fetcher"
	"github.com/jonesrussell/north-cloud/readlist/internal/handler"
	"github.com/jonesrussell/north-cloud/readlist/internal/logger"
	"github.com/jonesrussell/north-cloud/readlist/internal/metadata"
	"github.com/jonesrussell/north-cloud/readlist/internal/service"
	"github.com/jonesrussell/north-cloud/readlist/internal/storage"
)

// dbPingTimeout bounds the startup database connectivity check.
const dbPingTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log, err := createLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	db, err := connectDatabase(cfg, log)
	if err != nil {
		log.Error("Failed to connect to database", logger.Error(err))
		return 1
	}
	defer func() { _ = db.Close() }()

	return runServer(cfg, log, db)
}

// loadConfig loads and validates configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Path("config.yml"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return nil, fmt.Errorf("validate config: %w", validationErr)
	}
	return cfg, nil
}

// createLogger creates a logger instance from configuration.
func createLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(logger.String("service", cfg.Service.Name)), nil
}

// connectDatabase opens and verifies a database connection.
func connectDatabase(cfg *config.Config, log logger.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	log.Info("Database connected",
		logger.String("host", cfg.Database.Host),
		logger.Int("port", cfg.Database.Port),
		logger.String("database", cfg.Database.Database),
	)

	return db, nil
}

// buildMetadataCache returns the Redis metadata cache when enabled, or the
// no-op cache. A Redis connection failure downgrades to no-op: the cache
// only saves refetches.
func buildMetadataCache(cfg *config.Config, log logger.Logger) cache.MetadataCache {
	if !cfg.Cache.Enabled {
		return cache.NewNopCache()
	}

	client, err := cache.NewClient(cfg.Cache.Addr, cfg.Cache.Password)
	if err != nil {
		log.Warn("Metadata cache unavailable, continuing without it", logger.Error(err))
		return cache.NewNopCache()
	}

	log.Info("Metadata cache connected", logger.String("addr", cfg.Cache.Addr))
	return cache.NewRedisCache(client, cfg.Cache.TTL, log)
}

// runServer creates all dependencies and starts the HTTP server.
func runServer(cfg *config.Config, log logger.Logger, db *sqlx.DB) int {
	store := storage.NewItemStore(db)

	saveService := service.NewSaveService(
		fetcher.New(fetcher.Config{
			Timeout:      cfg.Fetch.Timeout,
			UserAgent:    cfg.Fetch.UserAgent,
			MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
		}),
		metadata.NewExtractor(),
		store,
		buildMetadataCache(cfg, log),
		log,
	)

	itemsHandler := handler.NewItemsHandler(saveService, store, favicon.NewCache(), log)
	healthHandler := handler.NewHealthHandler(cfg.Service.Name, cfg.Service.Version, store)

	rateLimitWindow := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
	server := api.NewServer(cfg.Service.Port, cfg.Service.Debug, log, func(router *gin.Engine) {
		api.SetupRoutes(router, itemsHandler, healthHandler,
			cfg.Service.JWTSecret, cfg.RateLimit.MaxSavesPerMinute, rateLimitWindow)
	})

	log.Info("Readlist starting", logger.Int("port", cfg.Service.Port))

	if err := server.Run(); err != nil {
		log.Error("Server error", logger.Error(err))
		return 1
	}

	log.Info("Readlist exited cleanly")
	return 0
}
