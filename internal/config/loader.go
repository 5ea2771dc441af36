package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration for the HTTP server from environment variables.
// Unset values take their defaults; the result is validated, including the
// settings only the server needs.
func Load() (*Config, error) {
	return load(true)
}

// LoadTool reads configuration for command-line tools. Settings that only
// the HTTP server consumes, such as the token secret, are not enforced.
func LoadTool() (*Config, error) {
	return load(false)
}

func load(server bool) (*Config, error) {
	cfg := &Config{}
	if err := populate(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	checks := []func() error{cfg.Validate}
	if server {
		checks = append(checks, cfg.validateServer)
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return nil, fmt.Errorf("config validation: %w", err)
		}
	}
	return cfg, nil
}

// envTag is the parsed env metadata of one struct field.
type envTag struct {
	name     string
	alt      string
	def      string
	required bool
}

func parseEnvTag(f reflect.StructField) (envTag, bool) {
	tag := envTag{
		name:     f.Tag.Get("env"),
		alt:      f.Tag.Get("envAlt"),
		def:      f.Tag.Get("default"),
		required: f.Tag.Get("required") == "true",
	}
	return tag, tag.name != ""
}

// lookup returns the first non-empty of the primary and alternate
// variables, falling back to the default.
func (t envTag) lookup() (string, error) {
	for _, name := range []string{t.name, t.alt} {
		if name == "" {
			continue
		}
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
	}
	if t.required {
		return "", fmt.Errorf("required environment variable %s is not set", t.name)
	}
	return t.def, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// populate fills the tagged fields of the struct v, descending into nested
// section structs.
func populate(v reflect.Value) error {
	for _, f := range reflect.VisibleFields(v.Type()) {
		fv := v.FieldByIndex(f.Index)
		if !f.IsExported() {
			continue
		}
		if f.Type.Kind() == reflect.Struct {
			if err := populate(fv); err != nil {
				return err
			}
			continue
		}

		tag, ok := parseEnvTag(f)
		if !ok {
			continue
		}
		value, err := tag.lookup()
		if err != nil {
			return err
		}
		if value == "" {
			continue
		}
		if err := assign(fv, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", tag.name, value, err)
		}
	}
	return nil
}

// assign parses value into field according to the field's type. Slices
// take comma-separated strings.
func assign(field reflect.Value, value string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(n)
	case reflect.Float64:
		x, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float: %w", err)
		}
		field.SetFloat(x)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		field.Set(reflect.ValueOf(items))
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Database validation
	if c.Database.URL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if c.Database.MaxConns < c.Database.MinConns {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
			c.Database.MaxConns, c.Database.MinConns))
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}
	if c.Database.MinConns < 0 {
		errs = append(errs, "DB_MIN_CONNS must be non-negative")
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	// Upload validation
	if c.Upload.MaxRequestSize <= 0 {
		errs = append(errs, "UPLOAD_MAX_REQUEST_SIZE must be positive")
	}
	if c.Upload.MaxTextSize <= 0 {
		errs = append(errs, "UPLOAD_MAX_TEXT_SIZE must be positive")
	}
	if c.Upload.MaxConcurrent <= 0 {
		errs = append(errs, "UPLOAD_MAX_CONCURRENT must be positive")
	}
	if c.Upload.MaxWaitTime <= 0 {
		errs = append(errs, "UPLOAD_MAX_WAIT_TIME must be positive")
	}

	// Ingest validation
	if c.Ingest.BatchSize <= 0 {
		errs = append(errs, "INGEST_BATCH_SIZE must be positive")
	}
	if c.Ingest.TimeoutThreshold <= 0 {
		errs = append(errs, "INGEST_TIMEOUT_THRESHOLD must be positive")
	}
	if c.Ingest.MissingFraction <= 0 || c.Ingest.MissingFraction >= 1 {
		errs = append(errs, fmt.Sprintf("INGEST_PARTIAL_MISSING_FRACTION (%g) must be in (0, 1)", c.Ingest.MissingFraction))
	}

	// Drive validation
	if c.Drive.MaxAPICalls <= 0 {
		errs = append(errs, "DRIVE_MAX_API_CALLS must be positive")
	}
	if c.Drive.MaxRecursiveFiles <= 0 {
		errs = append(errs, "DRIVE_MAX_RECURSIVE_FILES must be positive")
	}
	if c.Drive.ImportConcurrency <= 0 {
		errs = append(errs, "DRIVE_IMPORT_CONCURRENCY must be positive")
	}

	// Rate limit validation
	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}
	if c.Rate.Enabled && c.Rate.UploadPerHour <= 0 {
		errs = append(errs, "RATE_LIMIT_UPLOAD_PER_HOUR must be positive when rate limiting is enabled")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// validateServer checks settings only the HTTP server depends on.
func (c *Config) validateServer() error {
	var errs []string

	if c.Auth.JWTSecret == "" {
		errs = append(errs, "SUPABASE_JWT_SECRET is required")
	}
	if c.Auth.Audience == "" {
		errs = append(errs, "SUPABASE_JWT_AUDIENCE must not be empty")
	}
	if c.Server.WarmupWindow < 0 {
		errs = append(errs, "SERVER_WARMUP_WINDOW must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// String returns a safe string representation of the config for logging.
// Sensitive values like database URLs are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Database: {URL: [MASKED], MaxConns: %d, MinConns: %d}, ",
		c.Database.MaxConns, c.Database.MinConns))
	b.WriteString(fmt.Sprintf("Upload: {MaxRequestSize: %d, MaxConcurrent: %d}, ",
		c.Upload.MaxRequestSize, c.Upload.MaxConcurrent))
	b.WriteString(fmt.Sprintf("Ingest: {BatchSize: %d, TimeoutThreshold: %s, MissingFraction: %g}, ",
		c.Ingest.BatchSize, c.Ingest.TimeoutThreshold, c.Ingest.MissingFraction))
	b.WriteString(fmt.Sprintf("Auth: {JWTSecret: [MASKED], Audience: %q}, ", c.Auth.Audience))
	b.WriteString(fmt.Sprintf("Drive: {Enabled: %v}, ", c.Drive.APIKey != ""))
	b.WriteString(fmt.Sprintf("Rate: {Enabled: %v, UploadPerHour: %d, Redis: %v}, ",
		c.Rate.Enabled, c.Rate.UploadPerHour, c.Rate.RedisURL != ""))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
