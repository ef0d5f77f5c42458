package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/fragansa/movies-web/internal/audit"
	"github.com/fragansa/movies-web/internal/authapi"
	"github.com/fragansa/movies-web/internal/catalog"
	"github.com/fragansa/movies-web/internal/config"
	"github.com/fragansa/movies-web/internal/health"
	"github.com/fragansa/movies-web/internal/http/handler"
	"github.com/fragansa/movies-web/internal/http/middleware"
	"github.com/fragansa/movies-web/internal/http/router"
	"github.com/fragansa/movies-web/internal/observability"
	"github.com/fragansa/movies-web/internal/session"
	"github.com/fragansa/movies-web/internal/web"
)

// Logging bundles the process logger with the OTLP provider that backs
// it, so both travel through the injector together.
type Logging struct {
	Logger   *slog.Logger
	Provider *sdklog.LoggerProvider
}

func NewLogging(ctx context.Context, cfg *config.Config) (*Logging, error) {
	logger, provider, err := observability.InitLogger(ctx, cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return &Logging{Logger: logger, Provider: provider}, nil
}

func NewObservabilityRuntime(ctx context.Context, cfg *config.Config, logging *Logging) (*observability.Runtime, error) {
	rt, err := observability.InitRuntime(ctx, cfg, logging.Logger)
	if err != nil {
		return nil, err
	}
	rt.LoggerProvider = logging.Provider
	return rt, nil
}

// NewRedisClient returns nil when redis is not configured; the token
// store and limiter degrade to cookie-only behavior.
func NewRedisClient(cfg *config.Config) redis.UniversalClient {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}

func NewAuthAPIClient(cfg *config.Config) *authapi.Client {
	return authapi.New(cfg.AuthAPIBaseURL, cfg.AuthAPITimeout)
}

// NewCatalogClient caches shared list reads; the redis cache keeps
// replicas consistent, the in-memory one is the single-process fallback.
func NewCatalogClient(cfg *config.Config, rdb redis.UniversalClient) *catalog.Client {
	var cache catalog.ListCache
	if rdb != nil {
		cache = catalog.NewRedisListCache(rdb, "")
	} else {
		cache = catalog.NewInMemoryListCache()
	}
	return catalog.New(cfg.CatalogAPIBaseURL, cfg.AuthAPITimeout).WithCache(cache, cfg.CatalogCacheTTL)
}

func NewAuditStore(cfg *config.Config) (*audit.Store, error) {
	return audit.Open(cfg.AuditDBDriver, cfg.AuditDBDSN)
}

func NewSessionManager(api *authapi.Client, rdb redis.UniversalClient, cfg *config.Config, logging *Logging) *session.Manager {
	return session.NewManager(api, rdb, cfg.SecureCookies, logging.Logger)
}

func NewRenderer(logging *Logging) (*web.Renderer, error) {
	return web.NewRenderer(logging.Logger)
}

func NewDefaultLang(cfg *config.Config) web.Lang {
	return web.ParseLang(cfg.DefaultLang, web.LangEN)
}

func NewReadiness(rdb redis.UniversalClient, api *authapi.Client, cat *catalog.Client) *health.ProbeRunner {
	return health.NewProbeRunner(2*time.Second,
		health.RedisProbe(rdb),
		health.HTTPProbe("auth-api", api.BaseURL()),
		health.HTTPProbe("catalog-api", cat.BaseURL()),
	)
}

// NewLoginRateLimiter prefers the redis-backed window so the limit holds
// across replicas; without redis it falls back to a per-process window.
func NewLoginRateLimiter(rdb redis.UniversalClient, cfg *config.Config, logging *Logging) router.LoginLimiterFunc {
	var limiter middleware.Limiter
	if rdb != nil {
		limiter = middleware.NewRedisFixedWindowLimiter(rdb, cfg.LoginRateLimitRPM, time.Minute, "login")
	} else {
		limiter = middleware.NewLocalFixedWindowLimiter(cfg.LoginRateLimitRPM, time.Minute)
	}
	return middleware.NewRateLimiter(limiter, "login", logging.Logger).Middleware()
}

func NewHTTPHandler(cfg *config.Config, mgr *session.Manager, authH *handler.AuthHandler, catH *handler.CatalogHandler, limiter router.LoginLimiterFunc, readiness *health.ProbeRunner) http.Handler {
	return router.New(router.Dependencies{
		Auth:             authH,
		Catalog:          catH,
		Sessions:         mgr,
		LoginRateLimiter: limiter,
		Readiness:        readiness,
		EnableOTelHTTP:   cfg.OTELTracesEnabled,
	})
}

func NewHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Shutdown releases everything the injector started: the observability
// runtime, the redis client, and the audit database handle.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.Observability != nil {
		if err := a.Observability.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("observability shutdown: %w", err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if err := a.Audit.Close(); err != nil {
		errs = append(errs, fmt.Errorf("audit close: %w", err))
	}
	return errors.Join(errs...)
}
