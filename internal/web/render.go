package web

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/fragansa/movies-web/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page is the data every template receives. Form and FieldErrors echo a
// rejected submission back so the user does not lose their input.
type Page struct {
	Lang        Lang
	User        *domain.User
	Error       string
	Notice      string
	RedirectTo  string
	Form        map[string]string
	FieldErrors map[string]string
	Data        any
}

func (p Page) T(key string) string { return T(p.Lang, key) }

func (p Page) Field(name string) string {
	if p.Form == nil {
		return ""
	}
	return p.Form[name]
}

func (p Page) FieldError(name string) string {
	if p.FieldErrors == nil {
		return ""
	}
	return p.FieldErrors[name]
}

type Renderer struct {
	tmpl   *template.Template
	logger *slog.Logger
}

func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, logger: logger}, nil
}

func (rn *Renderer) Render(w http.ResponseWriter, status int, name string, p Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := rn.tmpl.ExecuteTemplate(w, name, p); err != nil {
		rn.logger.Error("render template", "template", name, "error", err)
	}
}

// StaticHandler serves the embedded assets under /static/.
func StaticHandler() http.Handler {
	return http.FileServer(http.FS(staticFS))
}
