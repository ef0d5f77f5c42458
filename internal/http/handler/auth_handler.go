package handler

import (
	"net/http"
	"strings"

	"github.com/fragansa/movies-web/internal/audit"
	"github.com/fragansa/movies-web/internal/domain"
	"github.com/fragansa/movies-web/internal/http/middleware"
	"github.com/fragansa/movies-web/internal/http/response"
	"github.com/fragansa/movies-web/internal/observability"
	"github.com/fragansa/movies-web/internal/token"
	"github.com/fragansa/movies-web/internal/web"
)

const (
	loginRedirectDefault    = "/movies"
	registerRedirectDefault = "/debts"
)

type AuthHandler struct {
	renderer    *web.Renderer
	trail       *audit.Store
	defaultLang web.Lang
}

func NewAuthHandler(renderer *web.Renderer, trail *audit.Store, defaultLang web.Lang) *AuthHandler {
	return &AuthHandler{renderer: renderer, trail: trail, defaultLang: defaultLang}
}

func (h *AuthHandler) page(r *http.Request) web.Page {
	p := web.Page{Lang: web.LangFromRequest(r, h.defaultLang)}
	if u, ok := middleware.UserFromContext(r.Context()); ok {
		p.User = u
	}
	return p
}

// safeRedirect keeps the post-login target on this site. Anything that is
// not a local absolute path falls back to the default.
func safeRedirect(raw, def string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return def
	}
	return raw
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	p := h.page(r)
	p.RedirectTo = safeRedirect(r.URL.Query().Get("redirectTo"), loginRedirectDefault)
	h.renderer.Render(w, http.StatusOK, "login", p)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusInternalServerError, "NO_SESSION", "session unavailable", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_FORM", "malformed form", nil)
		return
	}

	p := h.page(r)
	p.RedirectTo = safeRedirect(r.PostFormValue("redirectTo"), loginRedirectDefault)
	p.Form = map[string]string{"email": strings.TrimSpace(r.PostFormValue("email"))}

	creds := domain.Credentials{
		Email:    p.Form["email"],
		Password: r.PostFormValue("password"),
	}
	p.FieldErrors = requiredFields(p, map[string]string{
		"email":    creds.Email,
		"password": creds.Password,
	})
	if len(p.FieldErrors) > 0 {
		h.renderer.Render(w, http.StatusUnprocessableEntity, "login", p)
		return
	}

	if !ctrl.Login(r.Context(), creds) {
		observability.RecordAuthLogin("failure")
		observability.Audit(r, "auth.login", "outcome", "failure", "email", creds.Email)
		_ = h.trail.Record(r.Context(), audit.Event{
			Action:     "login",
			Outcome:    "failure",
			Email:      creds.Email,
			DeviceID:   deviceID(r),
			Path:       r.URL.Path,
			RemoteAddr: r.RemoteAddr,
			Detail:     ctrl.Err(),
		})
		p.Error = ctrl.Err()
		h.renderer.Render(w, http.StatusUnauthorized, "login", p)
		return
	}

	observability.RecordAuthLogin("success")
	observability.Audit(r, "auth.login", "outcome", "success", "email", creds.Email)
	_ = h.trail.Record(r.Context(), audit.Event{
		Action:           "login",
		Outcome:          "success",
		Email:            creds.Email,
		DeviceID:         deviceID(r),
		TokenFingerprint: audit.Fingerprint(ctrl.Token()),
		Path:             r.URL.Path,
		RemoteAddr:       r.RemoteAddr,
	})
	http.Redirect(w, r, p.RedirectTo, http.StatusSeeOther)
}

func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	p := h.page(r)
	p.RedirectTo = safeRedirect(r.URL.Query().Get("redirectTo"), registerRedirectDefault)
	h.renderer.Render(w, http.StatusOK, "register", p)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusInternalServerError, "NO_SESSION", "session unavailable", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_FORM", "malformed form", nil)
		return
	}

	p := h.page(r)
	p.RedirectTo = safeRedirect(r.PostFormValue("redirectTo"), registerRedirectDefault)
	p.Form = map[string]string{
		"email":    strings.TrimSpace(r.PostFormValue("email")),
		"fullName": strings.TrimSpace(r.PostFormValue("fullName")),
	}

	details := domain.RegisterDetails{
		Email:    p.Form["email"],
		Password: r.PostFormValue("password"),
		FullName: p.Form["fullName"],
	}
	p.FieldErrors = requiredFields(p, map[string]string{
		"email":    details.Email,
		"password": details.Password,
		"fullName": details.FullName,
	})
	if len(p.FieldErrors) > 0 {
		h.renderer.Render(w, http.StatusUnprocessableEntity, "register", p)
		return
	}

	if !ctrl.Register(r.Context(), details) {
		observability.RecordAuthRegister("failure")
		observability.Audit(r, "auth.register", "outcome", "failure", "email", details.Email)
		_ = h.trail.Record(r.Context(), audit.Event{
			Action:     "register",
			Outcome:    "failure",
			Email:      details.Email,
			DeviceID:   deviceID(r),
			Path:       r.URL.Path,
			RemoteAddr: r.RemoteAddr,
			Detail:     ctrl.Err(),
		})
		p.Error = ctrl.Err()
		h.renderer.Render(w, http.StatusUnprocessableEntity, "register", p)
		return
	}

	observability.RecordAuthRegister("success")
	observability.Audit(r, "auth.register", "outcome", "success", "email", details.Email)
	_ = h.trail.Record(r.Context(), audit.Event{
		Action:           "register",
		Outcome:          "success",
		Email:            details.Email,
		DeviceID:         deviceID(r),
		TokenFingerprint: audit.Fingerprint(ctrl.Token()),
		Path:             r.URL.Path,
		RemoteAddr:       r.RemoteAddr,
	})
	http.Redirect(w, r, p.RedirectTo, http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if ctrl, ok := middleware.SessionFromContext(r.Context()); ok {
		fp := audit.Fingerprint(ctrl.Token())
		ctrl.Logout(r.Context())
		observability.Audit(r, "auth.logout")
		_ = h.trail.Record(r.Context(), audit.Event{
			Action:           "logout",
			Outcome:          "success",
			DeviceID:         deviceID(r),
			TokenFingerprint: fp,
			Path:             r.URL.Path,
			RemoteAddr:       r.RemoteAddr,
		})
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// SetLang persists the language toggle and returns to the page the user
// was on.
func (h *AuthHandler) SetLang(w http.ResponseWriter, r *http.Request) {
	lang := web.ParseLang(r.PostFormValue("lang"), h.defaultLang)
	web.SetLangCookie(w, lang)
	http.Redirect(w, r, safeRedirect(refererPath(r), "/"), http.StatusSeeOther)
}

func requiredFields(p web.Page, fields map[string]string) map[string]string {
	errs := make(map[string]string)
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			errs[name] = p.T("requiredField")
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func deviceID(r *http.Request) string {
	c, err := r.Cookie(token.DeviceCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func refererPath(r *http.Request) string {
	ref := r.Header.Get("Referer")
	if ref == "" {
		return ""
	}
	u, err := r.URL.Parse(ref)
	if err != nil {
		return ""
	}
	return u.RequestURI()
}
