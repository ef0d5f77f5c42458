package session

import (
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/fragansa/movies-web/internal/token"
)

// Manager builds a request-scoped Controller wired to the request's
// cookie jar and the shared redis records. The persisted token and the
// in-flight identity checks are the only things shared between
// navigations; all other controller state is per request.
type Manager struct {
	api    AuthAPI
	redis  redis.UniversalClient
	secure bool
	logger *slog.Logger
	me     singleflight.Group
}

func NewManager(api AuthAPI, rdb redis.UniversalClient, secure bool, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{api: api, redis: rdb, secure: secure, logger: logger}
}

func (m *Manager) ForRequest(w http.ResponseWriter, r *http.Request) *Controller {
	store := token.ForRequest(r, w, m.redis, m.secure, m.logger)
	return newController(store, m.api, m.logger, &m.me)
}
