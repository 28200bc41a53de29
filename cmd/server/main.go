package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/avatarctic/live-catalog/configs"
	"github.com/avatarctic/live-catalog/internal/application/services"
	"github.com/avatarctic/live-catalog/internal/core/ports"
	"github.com/avatarctic/live-catalog/internal/infrastructure/cache"
	"github.com/avatarctic/live-catalog/internal/infrastructure/db"
	"github.com/avatarctic/live-catalog/internal/infrastructure/health"
	"github.com/avatarctic/live-catalog/internal/infrastructure/httpserver"
	redisinfra "github.com/avatarctic/live-catalog/internal/infrastructure/redis"
	"github.com/avatarctic/live-catalog/internal/infrastructure/store"
	"github.com/avatarctic/live-catalog/internal/infrastructure/ws"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting live-catalog service...")

	// Pick the backing store driver
	productStore, checkers, cleanup := buildStore(cfg, logger)
	defer cleanup()

	// Cache, broadcast hub and the product service on top
	productsCache := cache.New(productStore, cfg.Cache.TTL, logger)
	hub := ws.NewHub(logger)
	productService := services.NewProductService(productStore, productsCache, hub, logger)

	// Warm the cache before accepting traffic; a cold store is not fatal,
	// the first read will retry.
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if count, err := productsCache.Repopulate(warmCtx); err != nil {
		logger.WithError(err).Warn("Initial cache warmup failed")
	} else {
		logger.WithField("count", count).Info("Products cache warmed")
	}
	warmCancel()

	serverConfig := &httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		TLSCertFile:    cfg.Server.TLSCertFile,
		TLSKeyFile:     cfg.Server.TLSKeyFile,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}

	deps := httpserver.ServerDeps{
		ProductService: productService,
		Hub:            hub,
		HealthCheckers: checkers,
	}

	server := httpserver.NewServer(serverConfig, logger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s (store driver: %s)", cfg.Server.Host, cfg.Server.Port, cfg.Store.Driver)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}

// buildStore wires the configured backing store driver together with its
// health checkers and a cleanup function for owned connections.
func buildStore(cfg *config.Config, logger *logrus.Logger) (ports.ProductStore, []ports.HealthChecker, func()) {
	switch cfg.Store.Driver {
	case "redis":
		client, err := redisinfra.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis:", err)
		}
		logger.Info("Connected to Redis successfully")
		s := store.NewRedisStore(client, "catalog", logger)
		return s, []ports.HealthChecker{health.NewRedisHealthChecker(client)}, func() { _ = client.Close() }

	case "postgres":
		database, err := db.NewDatabase(&cfg.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database:", err)
		}
		logger.Info("Connected to database successfully")
		if err := database.Migrate("./migrations"); err != nil {
			logger.Warn("Failed to run migrations:", err)
		}
		s := store.NewPostgresStore(database.DB, logger)
		return s, []ports.HealthChecker{health.NewDBHealthChecker(database)}, func() { _ = database.Close() }

	case "memory":
		s := store.NewMemoryStore()
		return s, nil, func() {}

	default: // firestore
		s := store.NewFirestoreStore(&cfg.Store.Firestore, logger)
		return s, []ports.HealthChecker{health.NewStoreHealthChecker(s)}, func() {}
	}
}
