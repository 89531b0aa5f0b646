package main

import (
	"context"
	"fmt"
	"io"

	"codeberg.org/boomline/server/internal/auth"
	"codeberg.org/boomline/server/internal/config"
	"codeberg.org/boomline/server/internal/errors"
	"codeberg.org/boomline/server/internal/logger"
	"codeberg.org/boomline/server/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

// creates and configures a new server instance with all dependencies
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	services, closers, err := InitializeServices(ctx, cfg)
	if err != nil {
		closeAll(closers)
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	limiter, err := ratelimit.Middleware(ratelimit.Options{Rate: cfg.RateLimit, Redis: services.Redis})
	if err != nil {
		closeAll(closers)
		return nil, err
	}

	logger.Info("services initialized",
		"text_provider", cfg.TextProvider,
		"vision_provider", cfg.VisionProvider,
		"ledger_store", cfg.LedgerStore,
		"mirror", cfg.MirrorProvider,
		"blob_provider", cfg.BlobProvider,
		"daily_quota", cfg.DailyQuota,
		"rate_limit", cfg.RateLimit,
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	router.HandleMethodNotAllowed = true
	router.NoMethod(errors.MethodNotAllowed)
	router.NoRoute(func(c *gin.Context) {
		errors.NotFound(c, "route")
	})

	// identity comes before the limiter, which keys on it
	router.Use(
		CORSMiddleware(cfg.AllowedOrigins),
		services.Metrics.Middleware(),
		auth.Identify(cfg.JWTSecret),
		limiter,
	)

	server := &Server{
		config:   cfg,
		services: services,
		router:   router,
		closers:  closers,
	}

	RegisterRoutes(router, server)

	return server, nil
}

// releases every client, newest first
func (s *Server) Close() {
	closeAll(s.closers)
}

func closeAll(closers []io.Closer) {
	for i := len(closers) - 1; i >= 0; i-- {
		if closers[i] == nil {
			continue
		}

		if err := closers[i].Close(); err != nil {
			logger.WarnErr(err, "failed to close resource during shutdown")
		}
	}
}
