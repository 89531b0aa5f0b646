package config

import "time"

type Config struct {
	Environment string
	Port        string

	OpenAIKey    string
	AnthropicKey string
	GeminiKey    string

	TextProvider   string
	VisionProvider string
	TextModel      string
	VisionModel    string
	ImageModel     string
	ImageSize      string
	TextMaxTokens  int
	TagMaxTokens   int

	DailyQuota      int
	UpgradeURL      string
	DefaultLanguage string
	PromoHashtags   []string

	AllowedImageTypes []string
	VerifyImageURLs   bool
	MaxUploadBytes    int64

	LedgerStore string
	LedgerFile  string
	RedisURL    string
	DatabaseURL string

	MirrorProvider      string
	FirestoreProjectID  string
	FirestoreCollection string

	BlobProvider      string
	BlobBucket        string
	BlobPublicBaseURL string
	BlobDir           string

	JWTSecret      string
	RateLimit      string
	AllowedOrigins []string

	UpstreamTimeout time.Duration
}

// returns true when running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// flags for the terminal client
type Flags struct {
	Endpoint    string
	LedgerPath  string
	ContentType string
	Quota       int
	ClientID    string
	Language    string
}
