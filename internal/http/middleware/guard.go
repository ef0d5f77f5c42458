package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/fragansa/movies-web/internal/domain"
	"github.com/fragansa/movies-web/internal/observability"
	"github.com/fragansa/movies-web/internal/session"
)

type contextKey string

const (
	sessionContextKey contextKey = "session"
	userContextKey    contextKey = "user"
)

// PublicPrefixes are the paths the guard lets through without an identity
// check. "/" matches the home page only, the rest are prefixes.
var PublicPrefixes = []string{"/login", "/register", "/logout", "/lang", "/static", "/healthz", "/"}

// Guard gates every protected navigation. The handler behind it never runs
// until the session is resolved: anonymous requests and rejected tokens
// are redirected to the login page with the original path preserved, so
// the user lands back where they were headed.
func Guard(mgr *session.Manager, public []string) func(http.Handler) http.Handler {
	if public == nil {
		public = PublicPrefixes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctrl := mgr.ForRequest(w, r)
			ctx := context.WithValue(r.Context(), sessionContextKey, ctrl)
			r = r.WithContext(ctx)

			if isPublic(r.URL.Path, public) {
				observability.RecordGuardDecision("public")
				next.ServeHTTP(w, r)
				return
			}

			ctrl.InitFromStorage(ctx)
			if ctrl.Token() == "" {
				observability.RecordGuardDecision("redirect_anonymous")
				observability.Audit(r, "guard.redirect", "reason", "anonymous")
				redirectToLogin(w, r)
				return
			}

			if err := ctrl.LoadMe(ctx); err != nil {
				// The browser navigating away cancels the request
				// context mid-check; that outcome is stale and must
				// not log the user out.
				if ctx.Err() != nil {
					observability.RecordGuardDecision("cancelled")
					return
				}
				observability.RecordGuardDecision("redirect_rejected")
				observability.Audit(r, "guard.redirect", "reason", "identity_rejected", "error", err.Error())
				ctrl.Logout(ctx)
				redirectToLogin(w, r)
				return
			}

			observability.RecordGuardDecision("allow")
			ctx = context.WithValue(ctx, userContextKey, ctrl.User())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isPublic(path string, public []string) bool {
	for _, p := range public {
		if p == "/" {
			if path == "/" {
				return true
			}
			continue
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := "/login?redirectTo=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// SessionFromContext returns the request-scoped controller the guard
// attached. Present on every routed request, public paths included.
func SessionFromContext(ctx context.Context) (*session.Controller, bool) {
	c, ok := ctx.Value(sessionContextKey).(*session.Controller)
	return c, ok
}

// UserFromContext returns the verified identity on protected routes.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userContextKey).(*domain.User)
	return u, ok && u != nil
}
