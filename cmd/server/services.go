package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"codeberg.org/boomline/server/internal/blob"
	"codeberg.org/boomline/server/internal/config"
	"codeberg.org/boomline/server/internal/content"
	"codeberg.org/boomline/server/internal/generator"
	"codeberg.org/boomline/server/internal/ledger"
	"codeberg.org/boomline/server/internal/llm"
	"codeberg.org/boomline/server/internal/logger"
	"codeberg.org/boomline/server/internal/media"
	"codeberg.org/boomline/server/internal/metrics"
	"codeberg.org/boomline/server/internal/mirror"
	"codeberg.org/boomline/server/internal/subscription"
	"codeberg.org/boomline/server/internal/translate"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// creates and configures all service clients; closers are returned even on error
func InitializeServices(ctx context.Context, cfg *config.Config) (*Services, []io.Closer, error) {
	var closers []io.Closer

	llmClients, err := llm.New(ctx, llm.NewConfig(cfg))
	if err != nil {
		return nil, closers, fmt.Errorf("failed to create LLM clients: %w", err)
	}

	closers = append(closers, llmClients)

	blobs, blobCloser, err := blob.New(ctx, cfg)
	if err != nil {
		return nil, closers, fmt.Errorf("failed to create blob store: %w", err)
	}

	closers = append(closers, blobCloser)

	store, storeCloser, err := ledger.NewStore(ctx, cfg)
	if err != nil {
		return nil, closers, fmt.Errorf("failed to create ledger store: %w", err)
	}

	closers = append(closers, storeCloser)

	hosted, mirrorCloser, err := mirror.New(ctx, cfg)
	if err != nil {
		return nil, closers, fmt.Errorf("failed to create history mirror: %w", err)
	}

	closers = append(closers, mirrorCloser)

	var premium generator.PremiumChecker

	if cfg.DatabaseURL != "" {
		pool, owned, err := subscriptionPool(ctx, cfg, store)
		if err != nil {
			// premium is an upgrade, never a reason to refuse startup
			logger.WarnErr(err, "subscription lookup disabled")
		} else {
			if owned {
				closers = append(closers, closerFunc(func() error { pool.Close(); return nil }))
			}

			premium = subscription.NewChecker(pool)
		}
	}

	var redisClient *redis.Client

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, closers, fmt.Errorf("failed to parse redis url: %w", err)
		}

		redisClient = redis.NewClient(opts)
		closers = append(closers, redisClient)
	}

	adapter := media.NewAdapter(blobs, media.Options{
		AllowedTypes: cfg.AllowedImageTypes,
		VerifyURLs:   cfg.VerifyImageURLs,
		MaxBytes:     cfg.MaxUploadBytes,
	})

	l := ledger.New(store, ledger.OptionsFromConfig(cfg))

	gen := generator.New(generator.Config{
		Builder:       content.NewBuilder(content.OptionsFromConfig(cfg)),
		Text:          llmClients.Text,
		Vision:        llmClients.Vision,
		Images:        llmClients.Images,
		Ledger:        l,
		Mirror:        hosted,
		Premium:       premium,
		PromoHashtags: cfg.PromoHashtags,
	})

	// translations always go to openai, like image generation
	translator, ok := llmClients.Images.(llm.ChatCompleter)
	if !ok {
		translator = llmClients.Text
	}

	relay := translate.NewRelay(translator, translate.Options{DefaultLanguage: cfg.DefaultLanguage})

	return &Services{
		LLM:       llmClients,
		Blobs:     blobs,
		Ledger:    l,
		Mirror:    hosted,
		Media:     adapter,
		Translate: relay,
		Generator: gen,
		Metrics:   metrics.New(),
		Redis:     redisClient,
	}, closers, nil
}

// reuses the ledger pool when history already lives in postgres
func subscriptionPool(ctx context.Context, cfg *config.Config, store ledger.Store) (*pgxpool.Pool, bool, error) {
	if pg, ok := store.(*ledger.PostgresStore); ok {
		return pg.Pool(), false, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse database config: %w", err)
	}

	// one lookup per generation, a small pool is plenty
	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	// poolers in transaction mode do not support prepared statements
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, false, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, true, nil
}
