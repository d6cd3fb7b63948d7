// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// RedisConfig provides Redis connection settings.
type RedisConfig interface {
	GetRedisURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// OpenAIConfig provides settings for the OpenAI-compatible completion API.
type OpenAIConfig interface {
	GetOpenAIAPIKey() string
	GetOpenAIBaseURL() string
	GetOpenAIModel() string
	GetOpenAIMaxTokens() int
	GetOpenAITemperature() float64
	GetOpenAITimeout() time.Duration
	GetOpenAIProxyURL() string
	IsOpenAIEnabled() bool
}

// GenerationConfig provides settings for the generation retry loop.
type GenerationConfig interface {
	GetGenerationMaxAttempts() int
	GetGenerationRetryDelay() time.Duration
}

// NormalizeConfig provides settings for response normalization.
type NormalizeConfig interface {
	GetNormalizeProfile() string
	GetNormalizeMinScore() float64
	GetNormalizeMinLength() int
	GetRefusalMarkers() []string
}

// QuotaConfig provides settings for the request quota ledger.
type QuotaConfig interface {
	GetFreeRequests() int
	GetAdminUserIDs() []int64
}

// UploadConfig provides limits for incoming generation requests.
type UploadConfig interface {
	GetMaxFileSize() int64
	GetMaxTextLength() int
	GetAllowedImageFormats() []string
}

// RateLimitConfig provides settings for the public-surface rate limiter.
type RateLimitConfig interface {
	GetRateLimitPerMinute() int
	GetRateLimitPerHour() int
	IsRateLimitEnabled() bool
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinioBucketUploads() string
	IsMinIOEnabled() bool
}

// PricingConfig provides the location of the plan catalog.
type PricingConfig interface {
	GetPricingPath() string
}

// SchedulerConfig provides settings for background task processing.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	DatabaseURL           string
	RedisURL              string
	JWTAccessSecret       string
	CORSAllowAll          bool
	CORSOrigins           []string
	CORSAllowCreds        bool
	OpenAIAPIKey          string
	OpenAIBaseURL         string
	OpenAIModel           string
	OpenAIMaxTokens       int
	OpenAITemperature     float64
	OpenAITimeout         time.Duration
	OpenAIProxyURL        string
	GenerationMaxAttempts int
	GenerationRetryDelay  time.Duration
	NormalizeProfile      string
	NormalizeMinScore     float64
	NormalizeMinLength    int
	RefusalMarkers        []string
	FreeRequests          int
	AdminUserIDs          []int64
	MaxFileSize           int64
	MaxTextLength         int
	AllowedImageFormats   []string
	RateLimitEnabled      bool
	RateLimitPerMinute    int
	RateLimitPerHour      int
	MinIOEndpoint         string
	MinIOAccessKey        string
	MinIOSecretKey        string
	MinIOUseSSL           bool
	MinioBucketUploads    string
	PricingPath           string
	RedisTLSInsecure      bool
	AsynqQueueName        string
	AsynqConcurrency      int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// RedisConfig implementation
func (c *Config) GetRedisURL() string { return c.RedisURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// OpenAIConfig implementation
func (c *Config) GetOpenAIAPIKey() string         { return c.OpenAIAPIKey }
func (c *Config) GetOpenAIBaseURL() string        { return c.OpenAIBaseURL }
func (c *Config) GetOpenAIModel() string          { return c.OpenAIModel }
func (c *Config) GetOpenAIMaxTokens() int         { return c.OpenAIMaxTokens }
func (c *Config) GetOpenAITemperature() float64   { return c.OpenAITemperature }
func (c *Config) GetOpenAITimeout() time.Duration { return c.OpenAITimeout }
func (c *Config) GetOpenAIProxyURL() string       { return c.OpenAIProxyURL }
func (c *Config) IsOpenAIEnabled() bool           { return c.OpenAIAPIKey != "" }

// GenerationConfig implementation
func (c *Config) GetGenerationMaxAttempts() int          { return c.GenerationMaxAttempts }
func (c *Config) GetGenerationRetryDelay() time.Duration { return c.GenerationRetryDelay }

// NormalizeConfig implementation
func (c *Config) GetNormalizeProfile() string   { return c.NormalizeProfile }
func (c *Config) GetNormalizeMinScore() float64 { return c.NormalizeMinScore }
func (c *Config) GetNormalizeMinLength() int    { return c.NormalizeMinLength }
func (c *Config) GetRefusalMarkers() []string   { return c.RefusalMarkers }

// QuotaConfig implementation
func (c *Config) GetFreeRequests() int     { return c.FreeRequests }
func (c *Config) GetAdminUserIDs() []int64 { return c.AdminUserIDs }

// UploadConfig implementation
func (c *Config) GetMaxFileSize() int64            { return c.MaxFileSize }
func (c *Config) GetMaxTextLength() int            { return c.MaxTextLength }
func (c *Config) GetAllowedImageFormats() []string { return c.AllowedImageFormats }

// RateLimitConfig implementation
func (c *Config) GetRateLimitPerMinute() int { return c.RateLimitPerMinute }
func (c *Config) GetRateLimitPerHour() int   { return c.RateLimitPerHour }
func (c *Config) IsRateLimitEnabled() bool   { return c.RateLimitEnabled }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string      { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string     { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string     { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool          { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketUploads() string { return c.MinioBucketUploads }
func (c *Config) IsMinIOEnabled() bool          { return c.MinIOEndpoint != "" }

// PricingConfig implementation
func (c *Config) GetPricingPath() string { return c.PricingPath }

// SchedulerConfig implementation
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "*"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "true"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8000"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		RedisURL:              getEnv("REDIS_URL", "redis://localhost:6379/0"),
		JWTAccessSecret:       getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		CORSAllowCreds:        strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:         getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:           getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIMaxTokens:       mustInt(getEnv("OPENAI_MAX_TOKENS", "1000")),
		OpenAITemperature:     mustFloat(getEnv("OPENAI_TEMPERATURE", "0.7")),
		OpenAITimeout:         mustDuration(getEnv("OPENAI_TIMEOUT", "60s")),
		OpenAIProxyURL:        getEnv("OPENAI_PROXY_URL", ""),
		GenerationMaxAttempts: mustInt(getEnv("GENERATION_MAX_ATTEMPTS", "3")),
		GenerationRetryDelay:  mustDuration(getEnv("GENERATION_RETRY_DELAY", "1s")),
		NormalizeProfile:      strings.ToLower(getEnv("NORMALIZE_PROFILE", "lenient")),
		NormalizeMinScore:     mustFloatDefault(getEnv("NORMALIZE_MIN_SCORE", ""), -1),
		NormalizeMinLength:    mustInt(getEnv("NORMALIZE_MIN_LENGTH", "0")),
		RefusalMarkers:        splitCSV(getEnv("REFUSAL_MARKERS", "")),
		FreeRequests:          mustInt(getEnv("FREE_REQUESTS", "3")),
		AdminUserIDs:          splitCSVInt64(getEnv("ADMIN_IDS", "")),
		MaxFileSize:           mustInt64(getEnv("MAX_FILE_SIZE", "20971520")),
		MaxTextLength:         mustInt(getEnv("MAX_TEXT_LENGTH", "5000")),
		AllowedImageFormats:   splitCSV(getEnv("ALLOWED_IMAGE_FORMATS", "jpg,jpeg,png,webp")),
		RateLimitEnabled:      strings.EqualFold(getEnv("RATE_LIMIT_ENABLED", "true"), "true"),
		RateLimitPerMinute:    mustInt(getEnv("RATE_LIMIT_PER_MINUTE", "60")),
		RateLimitPerHour:      mustInt(getEnv("RATE_LIMIT_PER_HOUR", "1000")),
		MinIOEndpoint:         getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:        getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:        getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:           strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinioBucketUploads:    getEnv("MINIO_BUCKET_UPLOADS", "product-uploads"),
		PricingPath:           getEnv("PRICING_PATH", "pricing.yaml"),
		RedisTLSInsecure:      strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:        getEnv("ASYNQ_QUEUE_NAME", "cardgen"),
		AsynqConcurrency:      mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.NormalizeProfile != "strict" && cfg.NormalizeProfile != "lenient" {
		return nil, fmt.Errorf("NORMALIZE_PROFILE must be strict or lenient, got %q", cfg.NormalizeProfile)
	}
	if cfg.GenerationMaxAttempts < 1 {
		return nil, fmt.Errorf("GENERATION_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustFloatDefault(value string, fallback float64) float64 {
	if value == "" {
		return fallback
	}
	return mustFloat(value)
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func splitCSVInt64(value string) []int64 {
	parts := splitCSV(value)
	results := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		results = append(results, id)
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
