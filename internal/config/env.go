package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultUpgradeURL is where callers go once the free quota is used up
	DefaultUpgradeURL     = "https://buy.stripe.com/9AQ29m3aLcey6VabIP"
	defaultMaxUploadBytes = 10 << 20
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	cfg := &Config{
		Environment: envOr("ENVIRONMENT", "development"),
		Port:        envOr("PORT", "8080"),

		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
		GeminiKey:    os.Getenv("GEMINI_API_KEY"),

		TextProvider:   strings.ToLower(envOr("TEXT_PROVIDER", "openai")),
		VisionProvider: strings.ToLower(envOr("VISION_PROVIDER", "openai")),
		TextModel:      os.Getenv("TEXT_MODEL"),
		VisionModel:    os.Getenv("VISION_MODEL"),
		ImageModel:     envOr("IMAGE_MODEL", "dall-e-3"),
		ImageSize:      envOr("IMAGE_SIZE", "1024x1024"),
		TextMaxTokens:  envInt("TEXT_MAX_TOKENS", 1024),
		TagMaxTokens:   envInt("TAG_MAX_TOKENS", 120),

		DailyQuota:      envInt("DAILY_QUOTA", 5),
		UpgradeURL:      envOr("UPGRADE_URL", DefaultUpgradeURL),
		DefaultLanguage: envOr("DEFAULT_LANGUAGE", "en"),
		PromoHashtags:   splitList(os.Getenv("PROMO_HASHTAGS")),

		AllowedImageTypes: splitList(envOr("ALLOWED_IMAGE_TYPES", "jpeg,png")),
		VerifyImageURLs:   envBool("VERIFY_IMAGE_URLS", false),
		MaxUploadBytes:    int64(envInt("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)),

		LedgerStore: strings.ToLower(envOr("LEDGER_STORE", "memory")),
		LedgerFile:  envOr("LEDGER_FILE", "data/ledger.json"),
		RedisURL:    os.Getenv("REDIS_URL"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		MirrorProvider:      strings.ToLower(envOr("MIRROR_PROVIDER", "none")),
		FirestoreProjectID:  os.Getenv("FIRESTORE_PROJECT_ID"),
		FirestoreCollection: envOr("FIRESTORE_COLLECTION", "history"),

		BlobProvider:      strings.ToLower(envOr("BLOB_PROVIDER", "filesystem")),
		BlobBucket:        os.Getenv("BLOB_BUCKET"),
		BlobPublicBaseURL: os.Getenv("BLOB_PUBLIC_BASE_URL"),
		BlobDir:           envOr("BLOB_DIR", "data/blobs"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		RateLimit: envOr("RATE_LIMIT", "60-M"),

		AllowedOrigins: splitList(envOr("CORS_ORIGINS", "*")),

		UpstreamTimeout: time.Duration(envInt("UPSTREAM_TIMEOUT_SECONDS", 60)) * time.Second,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	for _, provider := range []string{c.TextProvider, c.VisionProvider} {
		switch provider {
		case "openai":
			if c.OpenAIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY environment variable is required")
			}
		case "anthropic":
			if c.AnthropicKey == "" {
				return fmt.Errorf("ANTHROPIC_API_KEY environment variable is required")
			}
		case "gemini":
			if c.GeminiKey == "" {
				return fmt.Errorf("GEMINI_API_KEY environment variable is required")
			}
		default:
			return fmt.Errorf("unsupported provider: %s", provider)
		}
	}

	// image generation is only offered by openai
	if c.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable is required for image generation")
	}

	if c.DailyQuota < 0 {
		return fmt.Errorf("DAILY_QUOTA must not be negative")
	}

	switch c.LedgerStore {
	case "memory", "file":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL environment variable is required for the redis ledger store")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required for the postgres ledger store")
		}
	default:
		return fmt.Errorf("unsupported ledger store: %s", c.LedgerStore)
	}

	switch c.MirrorProvider {
	case "none", "memory":
	case "firestore":
		if c.FirestoreProjectID == "" {
			return fmt.Errorf("FIRESTORE_PROJECT_ID environment variable is required for the firestore mirror")
		}
	default:
		return fmt.Errorf("unsupported mirror provider: %s", c.MirrorProvider)
	}

	switch c.BlobProvider {
	case "filesystem":
	case "gcs":
		if c.BlobBucket == "" {
			return fmt.Errorf("BLOB_BUCKET environment variable is required for gcs blob storage")
		}
	default:
		return fmt.Errorf("unsupported blob provider: %s", c.BlobProvider)
	}

	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}

	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}

	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}

	return fallback
}

// splits a comma separated list and drops empty items
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
