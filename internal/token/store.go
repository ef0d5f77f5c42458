package token

import (
	"context"
	"log/slog"
	"time"
)

const (
	// CookieName is the browser cookie carrying the bearer token.
	CookieName = "access_token"
	// DeviceCookieName scopes the server-side token records to one browser.
	DeviceCookieName = "device_id"

	canonicalKeyPrefix = "accessToken:"
	legacyKeyPrefix    = "access_token:"

	// MinTTL is the floor applied to expiry-derived lifetimes.
	MinTTL = 60 * time.Second
	// DefaultTTL is used when the auth service supplies no expiry.
	DefaultTTL = 86400 * time.Second
)

// Backend is one storage medium for the bearer token. Read reports absence
// as ("", nil); hard storage failures are returned but the Store treats
// them as absence.
type Backend interface {
	Name() string
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, token string, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// Store persists the bearer token across an ordered list of backends.
// Reads try each backend in priority order and return the first non-empty
// value. Writes and clears are best-effort: a failing medium never fails
// the operation, the session simply will not survive on that medium.
type Store struct {
	backends []Backend
	logger   *slog.Logger
}

func NewStore(logger *slog.Logger, backends ...Backend) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backends: backends, logger: logger}
}

// Read returns the persisted token, or "" when no medium has one.
func (s *Store) Read(ctx context.Context) string {
	for _, b := range s.backends {
		v, err := b.Read(ctx)
		if err != nil {
			s.logger.Debug("token read failed", "backend", b.Name(), "error", err)
			continue
		}
		if v != "" {
			return v
		}
	}
	return ""
}

// Write persists the token to every writable backend with a lifetime
// derived from expiresAt (zero means no expiry was supplied).
func (s *Store) Write(ctx context.Context, token string, expiresAt time.Time) {
	ttl := TTL(expiresAt)
	for _, b := range s.backends {
		if err := b.Write(ctx, token, ttl); err != nil {
			s.logger.Warn("token write failed", "backend", b.Name(), "error", err)
		}
	}
}

// Clear removes the token from every backend, including read-only legacy
// records. Idempotent.
func (s *Store) Clear(ctx context.Context) {
	for _, b := range s.backends {
		if err := b.Clear(ctx); err != nil {
			s.logger.Warn("token clear failed", "backend", b.Name(), "error", err)
		}
	}
}

// TTL converts an absolute expiry into a persistence lifetime: whole
// seconds until expiry, clamped to MinTTL, or DefaultTTL when no expiry
// is known.
func TTL(expiresAt time.Time) time.Duration {
	if expiresAt.IsZero() {
		return DefaultTTL
	}
	secs := int64(time.Until(expiresAt) / time.Second)
	if secs < int64(MinTTL/time.Second) {
		return MinTTL
	}
	return time.Duration(secs) * time.Second
}
