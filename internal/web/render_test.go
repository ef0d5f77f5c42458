package web

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fragansa/movies-web/internal/domain"
)

func newRendererForTest(t *testing.T) *Renderer {
	t.Helper()
	rn, err := NewRenderer(slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return rn
}

func TestRenderLoginPage(t *testing.T) {
	rn := newRendererForTest(t)
	rr := httptest.NewRecorder()
	rn.Render(rr, http.StatusOK, "login", Page{
		Lang:       LangES,
		Error:      "Credenciales inválidas",
		RedirectTo: "/movies",
		Form:       map[string]string{"email": "ana@example.com"},
	})

	body := rr.Body.String()
	if rr.Code != http.StatusOK {
		t.Fatalf("code=%d", rr.Code)
	}
	if !strings.Contains(body, "Iniciar sesión") {
		t.Fatal("missing translated heading")
	}
	if !strings.Contains(body, "Credenciales inválidas") {
		t.Fatal("missing error banner")
	}
	if !strings.Contains(body, `value="ana@example.com"`) {
		t.Fatal("submitted email not echoed back")
	}
}

func TestRenderEscapesUserInput(t *testing.T) {
	rn := newRendererForTest(t)
	rr := httptest.NewRecorder()
	rn.Render(rr, http.StatusOK, "login", Page{
		Lang: LangEN,
		Form: map[string]string{"email": `"><script>alert(1)</script>`},
	})
	if strings.Contains(rr.Body.String(), "<script>alert(1)</script>") {
		t.Fatal("form value not escaped")
	}
}

func TestRenderGenresListAndEditing(t *testing.T) {
	rn := newRendererForTest(t)

	type genresPage struct {
		Genres  []domain.Genre
		Editing *domain.Genre
	}

	rr := httptest.NewRecorder()
	rn.Render(rr, http.StatusOK, "genres", Page{
		Lang: LangEN,
		User: &domain.User{Email: "ana@example.com"},
		Data: genresPage{
			Genres:  []domain.Genre{{ID: 1, Name: "Drama"}},
			Editing: &domain.Genre{ID: 1, Name: "Drama"},
		},
	})

	body := rr.Body.String()
	if !strings.Contains(body, "/genres/1/update") {
		t.Fatal("editing form must post to the update path")
	}
	if !strings.Contains(body, "Drama") {
		t.Fatal("missing listed genre")
	}
	if !strings.Contains(body, "/genres/1/delete") {
		t.Fatal("missing delete action")
	}
}

func TestAllPageTemplatesPresent(t *testing.T) {
	rn := newRendererForTest(t)
	for _, name := range []string{"home", "login", "register", "movies", "actors", "directors", "genres", "countries"} {
		if rn.tmpl.Lookup(name) == nil {
			t.Fatalf("template %q not defined", name)
		}
	}
}
