package token

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const deviceCookieMaxAge = 365 * 24 * 60 * 60

// cookieBackend stores the token in the browser cookie. Writes go to the
// response; reads prefer the value written during this request so a
// write-then-read round-trips before the browser echoes the cookie back.
type cookieBackend struct {
	r      *http.Request
	w      http.ResponseWriter
	secure bool

	written bool
	value   string
}

func newCookieBackend(r *http.Request, w http.ResponseWriter, secure bool) *cookieBackend {
	return &cookieBackend{r: r, w: w, secure: secure}
}

func (b *cookieBackend) Name() string { return "cookie" }

func (b *cookieBackend) Read(ctx context.Context) (string, error) {
	if b.written {
		return b.value, nil
	}
	c, err := b.r.Cookie(CookieName)
	if err != nil {
		return "", nil
	}
	return c.Value, nil
}

func (b *cookieBackend) Write(ctx context.Context, token string, ttl time.Duration) error {
	http.SetCookie(b.w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   b.secure,
		SameSite: http.SameSiteLaxMode,
	})
	b.written = true
	b.value = token
	return nil
}

func (b *cookieBackend) Clear(ctx context.Context) error {
	http.SetCookie(b.w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   b.secure,
		SameSite: http.SameSiteLaxMode,
	})
	b.written = true
	b.value = ""
	return nil
}

// EnsureDeviceID returns the browser's device identifier, minting and
// setting one when the request carries none.
func EnsureDeviceID(r *http.Request, w http.ResponseWriter, secure bool) string {
	if c, err := r.Cookie(DeviceCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     DeviceCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   deviceCookieMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// ForRequest builds the store for one browser request: the access token
// cookie first, then the redis records under the canonical and legacy
// keys. rdb may be nil, in which case only the cookie medium is active.
func ForRequest(r *http.Request, w http.ResponseWriter, rdb redis.UniversalClient, secure bool, logger *slog.Logger) *Store {
	device := EnsureDeviceID(r, w, secure)
	return NewStore(logger,
		newCookieBackend(r, w, secure),
		newRedisBackend(rdb, canonicalKeyPrefix+device, true),
		newRedisBackend(rdb, legacyKeyPrefix+device, false),
	)
}
