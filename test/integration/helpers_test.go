package integration

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/fragansa/movies-web/internal/audit"
	"github.com/fragansa/movies-web/internal/authapi"
	"github.com/fragansa/movies-web/internal/catalog"
	"github.com/fragansa/movies-web/internal/domain"
	"github.com/fragansa/movies-web/internal/health"
	"github.com/fragansa/movies-web/internal/http/handler"
	"github.com/fragansa/movies-web/internal/http/middleware"
	"github.com/fragansa/movies-web/internal/http/router"
	"github.com/fragansa/movies-web/internal/session"
	"github.com/fragansa/movies-web/internal/web"
)

// webStack is the whole frontend wired the way serve wires it, with
// httptest stand-ins for the auth and catalog APIs and miniredis for
// the shared backends.
type webStack struct {
	baseURL string
	client  *http.Client
	redis   *miniredis.Miniredis
	trail   *audit.Store
	authAPI *httptest.Server
	catAPI  *httptest.Server
}

func newAuthAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/Auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds domain.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"errors":["Invalid credentials"]}`))
			return
		}
		_ = json.NewEncoder(w).Encode(domain.AuthResult{
			AccessToken: "tok-int",
			User:        domain.User{UserID: "7", Email: creds.Email},
		})
	})
	mux.HandleFunc("GET /api/Auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-int" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(domain.User{UserID: "7", Email: "ana@example.com", FullName: "Ana Torres"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newCatalogAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/Movies", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]domain.Movie{{ID: 1, Title: "Amores Perros"}})
	})
	for _, path := range []string{"/api/Actors", "/api/Directors", "/api/Countries", "/api/Genres"} {
		mux.HandleFunc("GET "+path, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newWebStack(t *testing.T, loginLimit int) *webStack {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	trail, err := audit.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("audit store: %v", err)
	}

	authSrv := newAuthAPIServer(t)
	catSrv := newCatalogAPIServer(t)

	api := authapi.New(authSrv.URL, 5*time.Second)
	cat := catalog.New(catSrv.URL, 5*time.Second).WithCache(catalog.NewRedisListCache(rdb, ""), 30*time.Second)
	mgr := session.NewManager(api, rdb, false, logger)
	renderer, err := web.NewRenderer(logger)
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	limiter := middleware.NewRateLimiter(
		middleware.NewRedisFixedWindowLimiter(rdb, loginLimit, time.Minute, "login"),
		"login", logger,
	).Middleware()

	h := router.New(router.Dependencies{
		Auth:             handler.NewAuthHandler(renderer, trail, web.LangEN),
		Catalog:          handler.NewCatalogHandler(cat, renderer, web.LangEN),
		Sessions:         mgr,
		LoginRateLimiter: limiter,
		Readiness: health.NewProbeRunner(2*time.Second,
			health.RedisProbe(rdb),
			health.HTTPProbe("auth-api", authSrv.URL),
			health.HTTPProbe("catalog-api", catSrv.URL),
		),
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &webStack{
		baseURL: srv.URL,
		client:  &http.Client{Jar: jar, Timeout: 10 * time.Second},
		redis:   mr,
		trail:   trail,
		authAPI: authSrv,
		catAPI:  catSrv,
	}
}
