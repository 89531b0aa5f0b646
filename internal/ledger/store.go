package ledger

import (
	"context"
	"fmt"
	"io"

	"codeberg.org/boomline/server/internal/config"
	"codeberg.org/boomline/server/internal/logger"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// creates the configured store; the closer releases its connections
func NewStore(ctx context.Context, cfg *config.Config) (Store, io.Closer, error) {
	switch cfg.LedgerStore {
	case "memory", "":
		logger.Warn("using in-memory ledger, history and usage are lost on restart")
		return NewMemoryStore(), nopCloser{}, nil
	case "file":
		store, err := NewFileStore(cfg.LedgerFile)
		if err != nil {
			return nil, nil, err
		}

		return store, nopCloser{}, nil
	case "redis":
		store, err := NewRedisStoreFromURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}

		return store, store, nil
	case "postgres":
		store, err := NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}

		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unsupported ledger store: %s", cfg.LedgerStore)
	}
}

// ledger options taken from configuration
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DailyQuota: cfg.DailyQuota,
		UpgradeURL: cfg.UpgradeURL,
	}
}
