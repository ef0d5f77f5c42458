// Package session owns the authentication state for one browser session:
// the bearer token, the identity it maps to, and the operations that move
// between the anonymous and authenticated states.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fragansa/movies-web/internal/authapi"
	"github.com/fragansa/movies-web/internal/domain"
	"github.com/fragansa/movies-web/internal/token"
)

var (
	// ErrNoToken means an identity check was requested with no token on
	// hand anywhere.
	ErrNoToken = errors.New("no token")
	// ErrOperationInFlight rejects a second login/register while one is
	// still running. The original UI only disabled the submit button;
	// here the race is closed for real.
	ErrOperationInFlight = errors.New("auth operation already in flight")
)

const (
	loginFallback    = "Login failed"
	registerFallback = "Register failed"
)

// TokenStore is the persistence surface the controller relies on. All
// operations are best-effort by contract: absence, never errors.
type TokenStore interface {
	Read(ctx context.Context) string
	Write(ctx context.Context, token string, expiresAt time.Time)
	Clear(ctx context.Context)
}

// AuthAPI is the subset of the auth service the controller calls.
type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error)
	Register(ctx context.Context, details domain.RegisterDetails) (*domain.AuthResult, error)
	Me(ctx context.Context, token string) (*domain.User, error)
}

// Controller is the single source of truth for one session's auth state.
// The user field is only ever set alongside a token; a failed identity
// check drops both.
type Controller struct {
	store  TokenStore
	api    AuthAPI
	logger *slog.Logger

	mu      sync.Mutex
	token   string
	user    *domain.User
	loading bool
	errMsg  string

	// Shared across every controller the Manager hands out, keyed by
	// token, so concurrent navigations from one browser collapse into a
	// single identity check.
	me *singleflight.Group
}

func NewController(store TokenStore, api AuthAPI, logger *slog.Logger) *Controller {
	return newController(store, api, logger, new(singleflight.Group))
}

func newController(store TokenStore, api AuthAPI, logger *slog.Logger, me *singleflight.Group) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{store: store, api: api, logger: logger, me: me}
}

func (c *Controller) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Controller) User() *domain.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the message of the last failed login/register, empty when
// the last operation succeeded.
func (c *Controller) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// InitFromStorage adopts a persisted token without contacting the server.
// Idempotent; a no-op when the session already holds a token.
func (c *Controller) InitFromStorage(ctx context.Context) {
	c.mu.Lock()
	if c.token != "" {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if t := c.store.Read(ctx); t != "" {
		c.mu.Lock()
		if c.token == "" {
			c.token = t
		}
		c.mu.Unlock()
	}
}

// Login exchanges credentials for a token. On success the token is
// persisted with its expiry and the returned identity is adopted; on
// failure Err carries the extracted message. Loading is reset either way.
func (c *Controller) Login(ctx context.Context, creds domain.Credentials) bool {
	return c.authenticate(ctx, loginFallback, func(ctx context.Context) (*domain.AuthResult, error) {
		return c.api.Login(ctx, creds)
	})
}

// Register has the same contract as Login against the registration
// endpoint.
func (c *Controller) Register(ctx context.Context, details domain.RegisterDetails) bool {
	return c.authenticate(ctx, registerFallback, func(ctx context.Context) (*domain.AuthResult, error) {
		return c.api.Register(ctx, details)
	})
}

func (c *Controller) authenticate(ctx context.Context, fallback string, call func(context.Context) (*domain.AuthResult, error)) bool {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		c.logger.Warn("rejected concurrent auth operation")
		return false
	}
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	res, err := call(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.errMsg = authapi.UserMessage(err, fallback)
		return false
	}
	c.token = res.AccessToken
	u := res.User
	c.user = &u
	c.store.Write(ctx, res.AccessToken, token.ExpiryHint(res.ExpiresAt, res.AccessToken))
	return true
}

// LoadMe confirms the current token against the identity endpoint and
// refreshes the user record. A rejected token (non-2xx) clears token and
// user before the error is returned; transport failures leave state
// untouched so the caller decides. Never modifies Loading or Err.
func (c *Controller) LoadMe(ctx context.Context) error {
	c.mu.Lock()
	t := c.token
	c.mu.Unlock()
	if t == "" {
		if t = c.store.Read(ctx); t == "" {
			return ErrNoToken
		}
	}

	v, err, _ := c.me.Do(t, func() (any, error) {
		return c.api.Me(ctx, t)
	})
	if err != nil {
		var apiErr *authapi.APIError
		if errors.As(err, &apiErr) {
			c.store.Clear(ctx)
			c.mu.Lock()
			c.token = ""
			c.user = nil
			c.mu.Unlock()
		}
		return err
	}

	user := v.(*domain.User)
	c.mu.Lock()
	c.token = t
	c.user = user
	c.mu.Unlock()
	return nil
}

// Logout clears the token everywhere and drops the identity. No network
// call; always succeeds.
func (c *Controller) Logout(ctx context.Context) {
	c.store.Clear(ctx)
	c.mu.Lock()
	c.token = ""
	c.user = nil
	c.mu.Unlock()
}
