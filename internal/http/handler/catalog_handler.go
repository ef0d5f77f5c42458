package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fragansa/movies-web/internal/authapi"
	"github.com/fragansa/movies-web/internal/catalog"
	"github.com/fragansa/movies-web/internal/domain"
	"github.com/fragansa/movies-web/internal/http/middleware"
	"github.com/fragansa/movies-web/internal/web"
)

// CatalogHandler renders the five resource pages and forwards their form
// submissions to the catalog API. It holds no state of its own; the
// catalog service is the source of truth and every page load refetches.
type CatalogHandler struct {
	client      *catalog.Client
	renderer    *web.Renderer
	defaultLang web.Lang
}

func NewCatalogHandler(client *catalog.Client, renderer *web.Renderer, defaultLang web.Lang) *CatalogHandler {
	return &CatalogHandler{client: client, renderer: renderer, defaultLang: defaultLang}
}

func (h *CatalogHandler) page(r *http.Request) web.Page {
	p := web.Page{Lang: web.LangFromRequest(r, h.defaultLang)}
	if u, ok := middleware.UserFromContext(r.Context()); ok {
		p.User = u
	}
	return p
}

func sessionToken(r *http.Request) string {
	if ctrl, ok := middleware.SessionFromContext(r.Context()); ok {
		return ctrl.Token()
	}
	return ""
}

func editID(r *http.Request) int {
	id, _ := strconv.Atoi(r.URL.Query().Get("edit"))
	return id
}

func pathID(r *http.Request) int {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	return id
}

func apiErrorMessage(p web.Page, err error) string {
	return authapi.UserMessage(err, p.T("errorTitle"))
}

func (h *CatalogHandler) HomePage(w http.ResponseWriter, r *http.Request) {
	p := h.page(r)
	// Home is public; still show the session when a valid token is around.
	if ctrl, ok := middleware.SessionFromContext(r.Context()); ok {
		ctrl.InitFromStorage(r.Context())
		if ctrl.Token() != "" && ctrl.LoadMe(r.Context()) == nil {
			p.User = ctrl.User()
		}
	}
	h.renderer.Render(w, http.StatusOK, "home", p)
}

// --- genres ---

type genresData struct {
	Genres  []domain.Genre
	Editing *domain.Genre
}

func (h *CatalogHandler) renderGenres(w http.ResponseWriter, r *http.Request, p web.Page, status int) {
	data := genresData{}
	genres, err := h.client.Genres(r.Context(), sessionToken(r))
	if err != nil && p.Error == "" {
		p.Error = apiErrorMessage(p, err)
	}
	data.Genres = genres
	if id := editID(r); id != 0 {
		for i := range genres {
			if genres[i].ID == id {
				data.Editing = &genres[i]
			}
		}
	}
	p.Data = data
	h.renderer.Render(w, status, "genres", p)
}

func (h *CatalogHandler) GenresPage(w http.ResponseWriter, r *http.Request) {
	h.renderGenres(w, r, h.page(r), http.StatusOK)
}

func (h *CatalogHandler) GenreCreate(w http.ResponseWriter, r *http.Request) {
	h.saveNamed(w, r, "/genres", h.renderGenres, func(name string) error {
		return h.client.CreateGenre(r.Context(), sessionToken(r), domain.Genre{Name: name})
	})
}

func (h *CatalogHandler) GenreUpdate(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	h.saveNamed(w, r, "/genres", h.renderGenres, func(name string) error {
		return h.client.UpdateGenre(r.Context(), sessionToken(r), domain.Genre{ID: id, Name: name})
	})
}

func (h *CatalogHandler) GenreDelete(w http.ResponseWriter, r *http.Request) {
	h.deleteAndReturn(w, r, "/genres", h.renderGenres, h.client.DeleteGenre)
}

// --- countries ---

type countriesData struct {
	Countries []domain.Country
	Editing   *domain.Country
}

func (h *CatalogHandler) renderCountries(w http.ResponseWriter, r *http.Request, p web.Page, status int) {
	data := countriesData{}
	countries, err := h.client.Countries(r.Context(), sessionToken(r))
	if err != nil && p.Error == "" {
		p.Error = apiErrorMessage(p, err)
	}
	data.Countries = countries
	if id := editID(r); id != 0 {
		for i := range countries {
			if countries[i].ID == id {
				data.Editing = &countries[i]
			}
		}
	}
	p.Data = data
	h.renderer.Render(w, status, "countries", p)
}

func (h *CatalogHandler) CountriesPage(w http.ResponseWriter, r *http.Request) {
	h.renderCountries(w, r, h.page(r), http.StatusOK)
}

func (h *CatalogHandler) CountryCreate(w http.ResponseWriter, r *http.Request) {
	h.saveNamed(w, r, "/countries", h.renderCountries, func(name string) error {
		return h.client.CreateCountry(r.Context(), sessionToken(r), domain.Country{Name: name})
	})
}

func (h *CatalogHandler) CountryUpdate(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	h.saveNamed(w, r, "/countries", h.renderCountries, func(name string) error {
		return h.client.UpdateCountry(r.Context(), sessionToken(r), domain.Country{ID: id, Name: name})
	})
}

func (h *CatalogHandler) CountryDelete(w http.ResponseWriter, r *http.Request) {
	h.deleteAndReturn(w, r, "/countries", h.renderCountries, h.client.DeleteCountry)
}

// --- actors ---

type peopleData[T any] struct {
	Actors    []domain.Actor
	Directors []domain.Director
	Countries []domain.Country
	Editing   *T
}

func (h *CatalogHandler) renderActors(w http.ResponseWriter, r *http.Request, p web.Page, status int) {
	data := peopleData[domain.Actor]{}
	token := sessionToken(r)
	actors, err := h.client.Actors(r.Context(), token)
	if err != nil && p.Error == "" {
		p.Error = apiErrorMessage(p, err)
	}
	data.Actors = actors
	if countries, err := h.client.Countries(r.Context(), token); err == nil {
		data.Countries = countries
	}
	if id := editID(r); id != 0 {
		for i := range actors {
			if actors[i].ID == id {
				data.Editing = &actors[i]
			}
		}
	}
	p.Data = data
	h.renderer.Render(w, status, "actors", p)
}

func (h *CatalogHandler) ActorsPage(w http.ResponseWriter, r *http.Request) {
	h.renderActors(w, r, h.page(r), http.StatusOK)
}

func (h *CatalogHandler) ActorCreate(w http.ResponseWriter, r *http.Request) {
	h.savePerson(w, r, "/actors", h.renderActors, func(first, last string, countryID int) error {
		return h.client.CreateActor(r.Context(), sessionToken(r), domain.Actor{FirstName: first, LastName: last, CountryID: countryID})
	})
}

func (h *CatalogHandler) ActorUpdate(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	h.savePerson(w, r, "/actors", h.renderActors, func(first, last string, countryID int) error {
		return h.client.UpdateActor(r.Context(), sessionToken(r), domain.Actor{ID: id, FirstName: first, LastName: last, CountryID: countryID})
	})
}

func (h *CatalogHandler) ActorDelete(w http.ResponseWriter, r *http.Request) {
	h.deleteAndReturn(w, r, "/actors", h.renderActors, h.client.DeleteActor)
}

// --- directors ---

func (h *CatalogHandler) renderDirectors(w http.ResponseWriter, r *http.Request, p web.Page, status int) {
	data := peopleData[domain.Director]{}
	token := sessionToken(r)
	directors, err := h.client.Directors(r.Context(), token)
	if err != nil && p.Error == "" {
		p.Error = apiErrorMessage(p, err)
	}
	data.Directors = directors
	if countries, err := h.client.Countries(r.Context(), token); err == nil {
		data.Countries = countries
	}
	if id := editID(r); id != 0 {
		for i := range directors {
			if directors[i].ID == id {
				data.Editing = &directors[i]
			}
		}
	}
	p.Data = data
	h.renderer.Render(w, status, "directors", p)
}

func (h *CatalogHandler) DirectorsPage(w http.ResponseWriter, r *http.Request) {
	h.renderDirectors(w, r, h.page(r), http.StatusOK)
}

func (h *CatalogHandler) DirectorCreate(w http.ResponseWriter, r *http.Request) {
	h.savePerson(w, r, "/directors", h.renderDirectors, func(first, last string, countryID int) error {
		return h.client.CreateDirector(r.Context(), sessionToken(r), domain.Director{FirstName: first, LastName: last, CountryID: countryID})
	})
}

func (h *CatalogHandler) DirectorUpdate(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	h.savePerson(w, r, "/directors", h.renderDirectors, func(first, last string, countryID int) error {
		return h.client.UpdateDirector(r.Context(), sessionToken(r), domain.Director{ID: id, FirstName: first, LastName: last, CountryID: countryID})
	})
}

func (h *CatalogHandler) DirectorDelete(w http.ResponseWriter, r *http.Request) {
	h.deleteAndReturn(w, r, "/directors", h.renderDirectors, h.client.DeleteDirector)
}

// --- movies ---

type moviesData struct {
	Movies          []domain.Movie
	Genres          []domain.Genre
	Countries       []domain.Country
	Directors       []domain.Director
	Actors          []domain.Actor
	Editing         *domain.Movie
	EditingActorIDs map[int]bool
}

func (h *CatalogHandler) renderMovies(w http.ResponseWriter, r *http.Request, p web.Page, status int) {
	data := moviesData{EditingActorIDs: map[int]bool{}}
	token := sessionToken(r)
	movies, err := h.client.Movies(r.Context(), token)
	if err != nil && p.Error == "" {
		p.Error = apiErrorMessage(p, err)
	}
	data.Movies = movies
	if genres, err := h.client.Genres(r.Context(), token); err == nil {
		data.Genres = genres
	}
	if countries, err := h.client.Countries(r.Context(), token); err == nil {
		data.Countries = countries
	}
	if directors, err := h.client.Directors(r.Context(), token); err == nil {
		data.Directors = directors
	}
	if actors, err := h.client.Actors(r.Context(), token); err == nil {
		data.Actors = actors
	}
	if id := editID(r); id != 0 {
		for i := range movies {
			if movies[i].ID == id {
				data.Editing = &movies[i]
				for _, aid := range movies[i].ActorIDs {
					data.EditingActorIDs[aid] = true
				}
			}
		}
	}
	p.Data = data
	h.renderer.Render(w, status, "movies", p)
}

func (h *CatalogHandler) MoviesPage(w http.ResponseWriter, r *http.Request) {
	h.renderMovies(w, r, h.page(r), http.StatusOK)
}

func (h *CatalogHandler) MovieCreate(w http.ResponseWriter, r *http.Request) {
	h.saveMovie(w, r, 0)
}

func (h *CatalogHandler) MovieUpdate(w http.ResponseWriter, r *http.Request) {
	h.saveMovie(w, r, pathID(r))
}

func (h *CatalogHandler) MovieDelete(w http.ResponseWriter, r *http.Request) {
	h.deleteAndReturn(w, r, "/movies", h.renderMovies, h.client.DeleteMovie)
}

func (h *CatalogHandler) saveMovie(w http.ResponseWriter, r *http.Request, id int) {
	p := h.page(r)
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/movies", http.StatusSeeOther)
		return
	}

	m := domain.Movie{
		ID:            id,
		Title:         strings.TrimSpace(r.PostFormValue("title")),
		Review:        strings.TrimSpace(r.PostFormValue("review")),
		CoverImageURL: strings.TrimSpace(r.PostFormValue("coverImageUrl")),
		TrailerCode:   strings.TrimSpace(r.PostFormValue("trailerCode")),
	}
	m.GenreID, _ = strconv.Atoi(r.PostFormValue("genreId"))
	m.CountryID, _ = strconv.Atoi(r.PostFormValue("countryId"))
	m.DirectorID, _ = strconv.Atoi(r.PostFormValue("directorId"))
	for _, raw := range r.PostForm["actorIds"] {
		if aid, err := strconv.Atoi(raw); err == nil {
			m.ActorIDs = append(m.ActorIDs, aid)
		}
	}

	// Same all-or-nothing rule the original form enforced.
	if m.Title == "" || m.Review == "" || m.GenreID == 0 || m.CountryID == 0 ||
		m.DirectorID == 0 || len(m.ActorIDs) == 0 || m.CoverImageURL == "" || m.TrailerCode == "" {
		p.Error = p.T("movieFormError")
		p.Form = map[string]string{
			"title":         m.Title,
			"review":        m.Review,
			"coverImageUrl": m.CoverImageURL,
			"trailerCode":   m.TrailerCode,
		}
		h.renderMovies(w, r, p, http.StatusUnprocessableEntity)
		return
	}

	var err error
	if id == 0 {
		err = h.client.CreateMovie(r.Context(), sessionToken(r), m)
	} else {
		err = h.client.UpdateMovie(r.Context(), sessionToken(r), m)
	}
	if err != nil {
		p.Error = apiErrorMessage(p, err)
		h.renderMovies(w, r, p, http.StatusOK)
		return
	}
	http.Redirect(w, r, "/movies", http.StatusSeeOther)
}

// --- shared form plumbing ---

type renderFunc func(w http.ResponseWriter, r *http.Request, p web.Page, status int)

func (h *CatalogHandler) saveNamed(w http.ResponseWriter, r *http.Request, listPath string, render renderFunc, save func(name string) error) {
	p := h.page(r)
	name := strings.TrimSpace(r.PostFormValue("name"))
	if name == "" {
		p.FieldErrors = map[string]string{"name": p.T("requiredField")}
		render(w, r, p, http.StatusUnprocessableEntity)
		return
	}
	if err := save(name); err != nil {
		p.Error = apiErrorMessage(p, err)
		render(w, r, p, http.StatusOK)
		return
	}
	http.Redirect(w, r, listPath, http.StatusSeeOther)
}

func (h *CatalogHandler) savePerson(w http.ResponseWriter, r *http.Request, listPath string, render renderFunc, save func(first, last string, countryID int) error) {
	p := h.page(r)
	first := strings.TrimSpace(r.PostFormValue("firstName"))
	last := strings.TrimSpace(r.PostFormValue("lastName"))
	countryID, _ := strconv.Atoi(r.PostFormValue("countryId"))

	errs := map[string]string{}
	if first == "" {
		errs["firstName"] = p.T("requiredField")
	}
	if last == "" {
		errs["lastName"] = p.T("requiredField")
	}
	if countryID == 0 {
		errs["countryId"] = p.T("requiredField")
	}
	if len(errs) > 0 {
		p.FieldErrors = errs
		p.Form = map[string]string{"firstName": first, "lastName": last}
		render(w, r, p, http.StatusUnprocessableEntity)
		return
	}
	if err := save(first, last, countryID); err != nil {
		p.Error = apiErrorMessage(p, err)
		render(w, r, p, http.StatusOK)
		return
	}
	http.Redirect(w, r, listPath, http.StatusSeeOther)
}

func (h *CatalogHandler) deleteAndReturn(w http.ResponseWriter, r *http.Request, listPath string, render renderFunc, del func(ctx context.Context, token string, id int) error) {
	if err := del(r.Context(), sessionToken(r), pathID(r)); err != nil {
		p := h.page(r)
		p.Error = apiErrorMessage(p, err)
		render(w, r, p, http.StatusOK)
		return
	}
	http.Redirect(w, r, listPath, http.StatusSeeOther)
}
