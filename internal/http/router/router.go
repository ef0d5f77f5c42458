package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fragansa/movies-web/internal/health"
	"github.com/fragansa/movies-web/internal/http/handler"
	"github.com/fragansa/movies-web/internal/http/middleware"
	"github.com/fragansa/movies-web/internal/http/response"
	"github.com/fragansa/movies-web/internal/session"
	"github.com/fragansa/movies-web/internal/web"
)

type Dependencies struct {
	Auth             *handler.AuthHandler
	Catalog          *handler.CatalogHandler
	Sessions         *session.Manager
	LoginRateLimiter LoginLimiterFunc
	Readiness        *health.ProbeRunner
	EnableOTelHTTP   bool
}

type LoginLimiterFunc func(http.Handler) http.Handler

func New(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	if dep.EnableOTelHTTP {
		r.Use(func(next http.Handler) http.Handler {
			return otelhttp.NewHandler(next, "http.server")
		})
	}
	r.Use(middleware.Guard(dep.Sessions, nil))

	loginLimiter := dep.LoginRateLimiter
	if loginLimiter == nil {
		loginLimiter = middleware.NewRateLimiter(
			middleware.NewLocalFixedWindowLimiter(30, time.Minute), "login", nil,
		).Middleware()
	}

	r.Get("/healthz/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/healthz/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	r.Handle("/static/*", web.StaticHandler())

	r.Get("/", dep.Catalog.HomePage)
	r.Get("/login", dep.Auth.LoginPage)
	r.With(loginLimiter).Post("/login", dep.Auth.Login)
	r.Get("/register", dep.Auth.RegisterPage)
	r.With(loginLimiter).Post("/register", dep.Auth.Register)
	r.Post("/logout", dep.Auth.Logout)
	r.Post("/lang", dep.Auth.SetLang)

	// Everything below is behind the guard: these paths are not in the
	// public list, so an unverified session never reaches the handlers.
	r.Get("/movies", dep.Catalog.MoviesPage)
	r.Post("/movies", dep.Catalog.MovieCreate)
	r.Post("/movies/{id}/update", dep.Catalog.MovieUpdate)
	r.Post("/movies/{id}/delete", dep.Catalog.MovieDelete)

	r.Get("/actors", dep.Catalog.ActorsPage)
	r.Post("/actors", dep.Catalog.ActorCreate)
	r.Post("/actors/{id}/update", dep.Catalog.ActorUpdate)
	r.Post("/actors/{id}/delete", dep.Catalog.ActorDelete)

	r.Get("/directors", dep.Catalog.DirectorsPage)
	r.Post("/directors", dep.Catalog.DirectorCreate)
	r.Post("/directors/{id}/update", dep.Catalog.DirectorUpdate)
	r.Post("/directors/{id}/delete", dep.Catalog.DirectorDelete)

	r.Get("/genres", dep.Catalog.GenresPage)
	r.Post("/genres", dep.Catalog.GenreCreate)
	r.Post("/genres/{id}/update", dep.Catalog.GenreUpdate)
	r.Post("/genres/{id}/delete", dep.Catalog.GenreDelete)

	r.Get("/countries", dep.Catalog.CountriesPage)
	r.Post("/countries", dep.Catalog.CountryCreate)
	r.Post("/countries/{id}/update", dep.Catalog.CountryUpdate)
	r.Post("/countries/{id}/delete", dep.Catalog.CountryDelete)

	return r
}
