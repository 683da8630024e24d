package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/adapter/http/router"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/app"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/infrastructure/config"
	"github.com/sathiyaseelan0712/paddy-leaf-disease/internal/infrastructure/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Load models and wire the service
	startCtx, cancelStart := context.WithTimeout(context.Background(), 5*time.Minute)
	service, err := app.New(startCtx, cfg, log)
	cancelStart()
	if err != nil {
		log.Error("Failed to start analysis service", zap.Error(err))
		return err
	}
	defer func() {
		if err := service.Close(); err != nil {
			log.Warn("Failed to release resources", zap.Error(err))
		}
	}()

	// Setup router
	r := router.Setup(router.Deps{
		DB:             service.DB,
		Redis:          service.Redis,
		Analysis:       service.Analysis,
		Gatherer:       service.Metrics,
		MaxUploadBytes: cfg.Server.MaxUploadMB << 20,
		Logger:         log,
	})

	// Create HTTP server
	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting server",
			zap.String("address", addr),
			zap.Int("models", service.Registry.Len()),
			zap.Int("quorum", service.Registry.Quorum()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		log.Error("Server failed", zap.Error(err))
		return err
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
	return nil
}
