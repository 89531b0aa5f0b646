package ratelimit

import (
	"fmt"
	"strings"

	"codeberg.org/boomline/server/internal/auth"
	"codeberg.org/boomline/server/internal/errors"
	"codeberg.org/boomline/server/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const keyPrefix = "boomline:ratelimit"

// paths that are never limited
var exemptPrefixes = []string{"/health", "/metrics", "/blobs"}

type Options struct {
	// ulule formatted rate, e.g. "60-M"
	Rate string

	// shared store across instances, in-memory when nil
	Redis *redis.Client
}

// per-caller request limiter keyed by the identity set by auth.Identify
func Middleware(opts Options) (gin.HandlerFunc, error) {
	if strings.TrimSpace(opts.Rate) == "" {
		return func(c *gin.Context) { c.Next() }, nil
	}

	rate, err := limiter.NewRateFromFormatted(opts.Rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", opts.Rate, err)
	}

	var store limiter.Store

	if opts.Redis != nil {
		store, err = sredis.NewStoreWithOptions(opts.Redis, limiter.StoreOptions{Prefix: keyPrefix})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: keyPrefix})
	}

	limited := mgin.NewMiddleware(limiter.New(store, rate),
		mgin.WithKeyGetter(key),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			errors.TooManyRequests(c, "rate limit exceeded, slow down")
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			// a broken limiter store never blocks traffic
			logger.WarnErr(err, "rate limiter failed", "path", c.Request.URL.Path)
			c.Next()
		}),
	)

	return func(c *gin.Context) {
		for _, prefix := range exemptPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}

		limited(c)
	}, nil
}

func key(c *gin.Context) string {
	if owner := auth.GetOwner(c); owner != "" {
		return owner
	}

	return "ip:" + c.ClientIP()
}
