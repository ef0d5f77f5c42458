package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries everything the web frontend needs: where to listen, where
// the external auth and catalog APIs live, and the optional redis/audit/otel
// backends. All values come from the environment.
type Config struct {
	Profile    string
	ListenAddr string

	AuthAPIBaseURL    string
	CatalogAPIBaseURL string
	AuthAPITimeout    time.Duration

	RedisAddr     string
	RedisPassword string

	AuditDBDriver string
	AuditDBDSN    string

	SecureCookies     bool
	DefaultLang       string
	LoginRateLimitRPM int
	CatalogCacheTTL   time.Duration

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsEnabled        bool
	OTELTracesEnabled         bool
	OTELLogsEnabled           bool
	OTELMetricsExportInterval time.Duration
}

func Load(ctx context.Context) (*Config, error) {
	cfg := &Config{
		Profile:    envString("APP_PROFILE", "dev"),
		ListenAddr: envString("LISTEN_ADDR", ":8080"),

		AuthAPIBaseURL:    envString("AUTH_API_BASE_URL", ""),
		CatalogAPIBaseURL: envString("CATALOG_API_BASE_URL", ""),

		RedisAddr:     envString("REDIS_ADDR", ""),
		RedisPassword: envString("REDIS_PASSWORD", ""),

		AuditDBDriver: envString("AUDIT_DB_DRIVER", ""),
		AuditDBDSN:    envString("AUDIT_DB_DSN", ""),

		DefaultLang: envString("DEFAULT_LANG", "en"),

		OTELServiceName:          envString("OTEL_SERVICE_NAME", "fragansa-movies-web"),
		OTELEnvironment:          envString("OTEL_ENVIRONMENT", "dev"),
		OTELExporterOTLPEndpoint: envString("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	var err error
	if cfg.AuthAPITimeout, err = envDuration("AUTH_API_TIMEOUT", 10*time.Second); err != nil {
		return nil, fail(ctx, cfg.Profile, err)
	}
	if cfg.SecureCookies, err = envBool("SECURE_COOKIES", true); err != nil {
		return nil, fail(ctx, cfg.Profile, err)
	}
	if cfg.LoginRateLimitRPM, err = envInt("LOGIN_RATE_LIMIT_RPM", 30); err != nil {
		return nil, fail(ctx, cfg.Profile, err)
	}
	if cfg.CatalogCacheTTL, err = envDuration("CATALOG_CACHE_TTL", 30*time.Second); err != nil {
		return nil, fail(ctx, cfg.Profile, err)
	}
	if cfg.OTELExporterOTLPInsecure, err = envBool("OTEL_EXPORTER_OTLP_INSECURE", true); err != nil {
		return nil, fail(ctx, cfg.Profile, err)
	}
	if cfg.OTELMetricsEnabled, err = envBool("OTEL_METRICS_ENABLED", false); err != nil {
		return nil, fail(ctx, cfg.Profile, err)
	}
	if cfg.OTELTracesEnabled, err = envBool("OTEL_TRACES_ENABLED", false); err != nil {
		return nil, fail(ctx, cfg.Profile, err)
	}
	if cfg.OTELLogsEnabled, err = envBool("OTEL_LOGS_ENABLED", false); err != nil {
		return nil, fail(ctx, cfg.Profile, err)
	}
	if cfg.OTELMetricsExportInterval, err = envDuration("OTEL_METRICS_EXPORT_INTERVAL", 15*time.Second); err != nil {
		return nil, fail(ctx, cfg.Profile, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fail(ctx, cfg.Profile, err)
	}
	recordConfigValidationEvent(ctx, cfg.Profile, "ok", "none")
	return cfg, nil
}

func (c *Config) validate() error {
	if c.AuthAPIBaseURL == "" {
		return fmt.Errorf("validate config: AUTH_API_BASE_URL is required")
	}
	if _, err := url.Parse(c.AuthAPIBaseURL); err != nil {
		return fmt.Errorf("validate config: AUTH_API_BASE_URL: %w", err)
	}
	if c.CatalogAPIBaseURL == "" {
		return fmt.Errorf("validate config: CATALOG_API_BASE_URL is required")
	}
	if _, err := url.Parse(c.CatalogAPIBaseURL); err != nil {
		return fmt.Errorf("validate config: CATALOG_API_BASE_URL: %w", err)
	}
	if c.AuthAPITimeout <= 0 {
		return fmt.Errorf("validate config: AUTH_API_TIMEOUT must be positive")
	}
	switch c.AuditDBDriver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("validate config: AUDIT_DB_DRIVER must be postgres or sqlite")
	}
	if c.AuditDBDriver != "" && c.AuditDBDSN == "" {
		return fmt.Errorf("validate config: AUDIT_DB_DSN is required when AUDIT_DB_DRIVER is set")
	}
	switch c.DefaultLang {
	case "en", "es":
	default:
		return fmt.Errorf("validate config: DEFAULT_LANG must be en or es")
	}
	return nil
}

func fail(ctx context.Context, profile string, err error) error {
	recordConfigValidationEvent(ctx, profile, "error", classifyConfigLoadError(err))
	return err
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
