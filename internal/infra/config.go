package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	DefaultLocale    string
	GeoIPDBPath      string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	ProviderTimeout  time.Duration
	RateLimitPerMin  int

	ImageProvider     string
	GeminiAPIKey      string
	GeminiModel       string
	GeminiBaseURL     string
	GatewayAPIKey     string
	GatewayBaseURL    string
	GatewayImageModel string
	GatewayTextModel  string

	ImageFetchMaxBytes   int64
	VariationConcurrency int

	DatabaseURL        string
	SupabaseURL        string
	SupabaseServiceKey string
	RedisURL           string

	PublishBackend   string
	PublishDir       string
	PublishBaseURL   string
	S3Bucket         string
	S3Region         string
	S3Endpoint       string
	S3PublicURL      string
	S3Prefix         string
	S3ForcePathStyle bool
}

const (
	ImageProviderGemini  = "gemini"
	ImageProviderGateway = "gateway"

	PublishNone = "none"
	PublishFS   = "fs"
	PublishS3   = "s3"
)

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		DefaultLocale:    getEnv("DEFAULT_LOCALE", "pt"),
		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 300)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		ProviderTimeout:  time.Second * time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 0)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),

		ImageProvider:     strings.ToLower(getEnv("IMAGE_PROVIDER", ImageProviderGemini)),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash-image"),
		GeminiBaseURL:     os.Getenv("GEMINI_BASE_URL"),
		GatewayAPIKey:     os.Getenv("GATEWAY_API_KEY"),
		GatewayBaseURL:    getEnv("GATEWAY_BASE_URL", "https://ai.gateway.lovable.dev/v1"),
		GatewayImageModel: getEnv("GATEWAY_IMAGE_MODEL", "google/gemini-2.5-flash-image-preview"),
		GatewayTextModel:  getEnv("GATEWAY_TEXT_MODEL", "google/gemini-2.5-flash"),

		ImageFetchMaxBytes:   int64(getEnvInt("IMAGE_FETCH_MAX_BYTES", 20<<20)),
		VariationConcurrency: getEnvInt("VARIATION_CONCURRENCY", 1),

		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		RedisURL:           os.Getenv("REDIS_URL"),

		PublishBackend:   strings.ToLower(getEnv("PUBLISH_BACKEND", PublishNone)),
		PublishDir:       getEnv("PUBLISH_DIR", "./data/published"),
		PublishBaseURL:   os.Getenv("PUBLISH_BASE_URL"),
		S3Bucket:         os.Getenv("S3_BUCKET"),
		S3Region:         os.Getenv("S3_REGION"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3PublicURL:      os.Getenv("S3_PUBLIC_URL"),
		S3Prefix:         getEnv("S3_PREFIX", "generated"),
		S3ForcePathStyle: getEnvBool("S3_FORCE_PATH_STYLE", false),
	}

	switch cfg.ImageProvider {
	case ImageProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when IMAGE_PROVIDER=gemini")
		}
	case ImageProviderGateway:
		if cfg.GatewayAPIKey == "" {
			return nil, fmt.Errorf("GATEWAY_API_KEY is required when IMAGE_PROVIDER=gateway")
		}
	default:
		return nil, fmt.Errorf("IMAGE_PROVIDER %q is not supported", cfg.ImageProvider)
	}

	if (cfg.SupabaseURL == "") != (cfg.SupabaseServiceKey == "") {
		return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY must be set together")
	}

	switch cfg.PublishBackend {
	case PublishNone, PublishFS:
	case PublishS3:
		if cfg.S3Bucket == "" || cfg.S3Region == "" {
			return nil, fmt.Errorf("S3_BUCKET and S3_REGION are required when PUBLISH_BACKEND=s3")
		}
	default:
		return nil, fmt.Errorf("PUBLISH_BACKEND %q is not supported", cfg.PublishBackend)
	}

	if cfg.VariationConcurrency < 1 {
		cfg.VariationConcurrency = 1
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
