package main

import (
	"io"

	"codeberg.org/boomline/server/internal/blob"
	"codeberg.org/boomline/server/internal/config"
	"codeberg.org/boomline/server/internal/generator"
	"codeberg.org/boomline/server/internal/ledger"
	"codeberg.org/boomline/server/internal/llm"
	"codeberg.org/boomline/server/internal/media"
	"codeberg.org/boomline/server/internal/metrics"
	"codeberg.org/boomline/server/internal/mirror"
	"codeberg.org/boomline/server/internal/translate"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// holds all dependencies and state for the API server
type Server struct {
	config   *config.Config
	services *Services
	router   *gin.Engine

	// released in reverse order on shutdown
	closers []io.Closer
}

// holds all external service clients and the domain services built on them
type Services struct {
	LLM       *llm.Clients
	Blobs     blob.Store
	Ledger    *ledger.Ledger
	Mirror    mirror.Mirror
	Media     *media.Adapter
	Translate *translate.Relay
	Generator *generator.Generator
	Metrics   *metrics.Metrics

	// shared with the rate limiter when configured
	Redis *redis.Client
}
