// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Ingest   IngestConfig
	Auth     AuthConfig
	Drive    DriveConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"PORT" envAlt:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"120s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 120s).
	// Batch Drive imports run inside a single request.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"120s"`

	// FrontendURL is appended to the CORS allow-list with any trailing slash removed.
	FrontendURL string `env:"FRONTEND_URL"`

	// AllowedOrigins are always allowed for CORS (default: http://localhost:3000)
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// WarmupWindow is how long after start responses carry X-Server-Warming (default: 60s)
	WarmupWindow time.Duration `env:"SERVER_WARMUP_WINDOW" default:"60s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// UploadConfig holds TSV upload handling settings.
type UploadConfig struct {
	// MaxRequestSize caps the multipart request body in bytes (default: 16MB)
	MaxRequestSize int64 `env:"UPLOAD_MAX_REQUEST_SIZE" default:"16777216"`

	// MaxTextSize caps the decoded text length in characters (default: 10MB)
	MaxTextSize int `env:"UPLOAD_MAX_TEXT_SIZE" default:"10485760"`

	// MaxConcurrent is the maximum number of parallel ingestions (default: 5)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long to wait for an ingestion slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`
}

// IngestConfig holds the tunables of the TSV ingestion engine.
type IngestConfig struct {
	// BatchSize is the number of questions written per bulk insert (default: 100)
	BatchSize int `env:"INGEST_BATCH_SIZE" default:"100"`

	// TimeoutThreshold marks an ingestion partial when it ran longer than this (default: 20s)
	TimeoutThreshold time.Duration `env:"INGEST_TIMEOUT_THRESHOLD" default:"20s"`

	// MissingFraction marks an ingestion partial when more than this share
	// of the expected questions was not imported (default: 0.2)
	MissingFraction float64 `env:"INGEST_PARTIAL_MISSING_FRACTION" default:"0.2"`
}

// AuthConfig holds bearer token verification settings.
type AuthConfig struct {
	// JWTSecret is the Supabase project's HS256 signing secret (required)
	JWTSecret string `env:"SUPABASE_JWT_SECRET"`

	// Audience is the expected aud claim (default: authenticated)
	Audience string `env:"SUPABASE_JWT_AUDIENCE" default:"authenticated"`
}

// DriveConfig holds Google Drive integration settings.
type DriveConfig struct {
	// APIKey enables the Drive routes when set.
	APIKey string `env:"GOOGLE_DRIVE_API_KEY"`

	// MaxAPICalls bounds the folders scanned by a recursive listing (default: 100)
	MaxAPICalls int `env:"DRIVE_MAX_API_CALLS" default:"100"`

	// MaxRecursiveFiles bounds the files returned by a recursive listing (default: 50)
	MaxRecursiveFiles int `env:"DRIVE_MAX_RECURSIVE_FILES" default:"50"`

	// ImportConcurrency is how many files a batch import processes at once (default: 3)
	ImportConcurrency int `env:"DRIVE_IMPORT_CONCURRENCY" default:"3"`

	// RequestTimeout bounds a single Drive API call (default: 30s)
	RequestTimeout time.Duration `env:"DRIVE_REQUEST_TIMEOUT" default:"30s"`
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`

	// UploadPerHour is the limit for upload and import endpoints (default: 100)
	UploadPerHour int `env:"RATE_LIMIT_UPLOAD_PER_HOUR" default:"100"`

	// RedisURL switches the upload limiter to a shared Redis counter when set.
	RedisURL string `env:"REDIS_URL"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// CORSOrigins returns the configured origins plus FrontendURL.
func (c *ServerConfig) CORSOrigins() []string {
	origins := append([]string(nil), c.AllowedOrigins...)
	if u := strings.TrimRight(strings.TrimSpace(c.FrontendURL), "/"); u != "" {
		origins = append(origins, u)
	}
	return origins
}
