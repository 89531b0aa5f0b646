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

	"codeberg.org/boomline/server/internal/config"
	"codeberg.org/boomline/server/internal/logger"
)

// @title Boomline API
// @version 1.0
// @description AI content generation for social media posts
// @description
// @description Features:
// @description - Captions, hashtags and post copy from a short prompt
// @description - Image generation and captions for uploaded images
// @description - Translation of generated content
// @description - Per-caller history with a daily free quota

// @contact.name API Support
// @contact.url https://codeberg.org/boomline/server

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Optional JWT; without it callers are identified by X-Client-ID or IP. Format: Bearer {token}

func main() {
	logger.Info("starting boomline server")

	// load configuration from environment
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	ctx := context.Background()

	// create server with all dependencies
	srv, err := NewServer(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	// provider calls are bounded by their own timeout, writes need room for them
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           srv.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.UpstreamTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// start server in goroutine
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	// wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// graceful shutdown with 10 second timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	// close stores and provider clients
	srv.Close()

	logger.Info("server stopped")
}
