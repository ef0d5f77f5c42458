package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fragansa/movies-web/internal/http/response"
)

// Limiter decides whether one more request under key fits the window.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

type localWindow struct {
	count   int
	resetAt time.Time
}

type localFixedWindowLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	store     map[string]*localWindow
	nextSweep time.Time
}

func NewLocalFixedWindowLimiter(limit int, window time.Duration) Limiter {
	return &localFixedWindowLimiter{
		limit:  limit,
		window: window,
		store:  make(map[string]*localWindow),
	}
}

func (l *localFixedWindowLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweepLocked(now)

	w, ok := l.store[key]
	if !ok || now.After(w.resetAt) {
		l.store[key] = &localWindow{count: 1, resetAt: now.Add(l.window)}
		return true, 0, nil
	}
	w.count++
	if w.count > l.limit {
		return false, time.Until(w.resetAt), nil
	}
	return true, 0, nil
}

// sweepLocked drops every expired window at most once per window length,
// keeping the per-IP map bounded by the active client set.
func (l *localFixedWindowLimiter) sweepLocked(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	l.nextSweep = now.Add(l.window)
	for key, w := range l.store {
		if now.After(w.resetAt) {
			delete(l.store, key)
		}
	}
}

type redisFixedWindowLimiter struct {
	client redis.UniversalClient
	limit  int
	window time.Duration
	prefix string
}

// NewRedisFixedWindowLimiter counts per-key hits in redis so the limit
// holds across replicas.
func NewRedisFixedWindowLimiter(client redis.UniversalClient, limit int, window time.Duration, scope string) Limiter {
	return &redisFixedWindowLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "ratelimit:" + scope + ":",
	}
}

func (l *redisFixedWindowLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	full := l.prefix + key
	count, err := l.client.Incr(ctx, full).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, full, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	if count > int64(l.limit) {
		ttl, err := l.client.TTL(ctx, full).Result()
		if err != nil || ttl < 0 {
			ttl = l.window
		}
		return false, ttl, nil
	}
	return true, 0, nil
}

type RateLimiter struct {
	limiter Limiter
	scope   string
	logger  *slog.Logger
}

func NewRateLimiter(limiter Limiter, scope string, logger *slog.Logger) *RateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RateLimiter{limiter: limiter, scope: scope, logger: logger}
}

// Middleware enforces the limit per client IP. A limiter backend failure
// fails open: login availability beats strict limiting when redis is down.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, retryAfter, err := rl.limiter.Allow(r.Context(), clientIPKey(r))
			if err != nil {
				rl.logger.Warn("rate limiter backend unavailable, allowing request",
					"scope", rl.scope, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				secs := int(retryAfter/time.Second) + 1
				w.Header().Set("Retry-After", fmt.Sprintf("%d", secs))
				response.Error(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
