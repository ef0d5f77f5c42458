package web

import "net/http"

type Lang string

const (
	LangEN Lang = "en"
	LangES Lang = "es"
)

const (
	LangCookieName   = "lang"
	LangCookieMaxAge = 31536000
)

// dict carries the UI strings of the original interface, English and
// Spanish. Lookup falls back to the key itself so a missing entry is
// visible instead of blank.
var dict = map[Lang]map[string]string{
	LangEN: {
		"login":          "Login",
		"logout":         "Logout",
		"register":       "Register",
		"email":          "Email",
		"password":       "Password",
		"fullName":       "Full name",
		"haveAccount":    "Already have an account?",
		"noAccount":      "Don't have an account?",
		"save":           "Save",
		"create":         "Create",
		"delete":         "Delete",
		"edit":           "Edit",
		"update":         "Update",
		"cancel":         "Cancel",
		"actions":        "Actions",
		"loading":        "Loading…",
		"noResults":      "No results.",
		"errorTitle":     "Error",
		"movies":         "Movies",
		"actors":         "Actors",
		"directors":      "Directors",
		"genres":         "Genres",
		"countries":      "Countries",
		"title":          "Title",
		"name":           "Name",
		"firstName":      "First name",
		"lastName":       "Last name",
		"country":        "Country",
		"genre":          "Genre",
		"review":         "Review",
		"director":       "Director",
		"actorsLabel":    "Actors",
		"selectCountry":  "Select a country",
		"selectGenre":    "Select a genre",
		"selectDirector": "Select a director",
		"coverImageUrl":  "Cover image URL",
		"trailerCode":    "YouTube trailer code",
		"trailer":        "Trailer",
		"newMovie":       "New movie",
		"newActor":       "New actor",
		"newDirector":    "New director",
		"newGenre":       "New genre",
		"newCountry":     "New country",
		"confirmDelete":  "Are you sure you want to delete this item?",
		"requiredField":  "This field is required.",
		"movieFormError": "All fields are required and there must be at least one actor, a cover and a trailer code.",
	},
	LangES: {
		"login":          "Iniciar sesión",
		"logout":         "Cerrar sesión",
		"register":       "Registrar",
		"email":          "Correo",
		"password":       "Contraseña",
		"fullName":       "Nombre completo",
		"haveAccount":    "¿Ya tienes cuenta?",
		"noAccount":      "¿No tienes cuenta?",
		"save":           "Guardar",
		"create":         "Crear",
		"delete":         "Eliminar",
		"edit":           "Editar",
		"update":         "Actualizar",
		"cancel":         "Cancelar",
		"actions":        "Acciones",
		"loading":        "Cargando…",
		"noResults":      "Sin resultados.",
		"errorTitle":     "Error",
		"movies":         "Películas",
		"actors":         "Actores",
		"directors":      "Directores",
		"genres":         "Géneros",
		"countries":      "Países",
		"title":          "Título",
		"name":           "Nombre",
		"firstName":      "Nombre",
		"lastName":       "Apellido",
		"country":        "País",
		"genre":          "Género",
		"review":         "Reseña",
		"director":       "Director",
		"actorsLabel":    "Actores",
		"selectCountry":  "Selecciona un país",
		"selectGenre":    "Selecciona un género",
		"selectDirector": "Selecciona un director",
		"coverImageUrl":  "URL de la imagen de portada",
		"trailerCode":    "Código del tráiler en YouTube",
		"trailer":        "Tráiler",
		"newMovie":       "Nueva película",
		"newActor":       "Nuevo actor",
		"newDirector":    "Nuevo director",
		"newGenre":       "Nuevo género",
		"newCountry":     "Nuevo país",
		"confirmDelete":  "¿Seguro que deseas eliminar este registro?",
		"requiredField":  "Este campo es obligatorio.",
		"movieFormError": "Todos los campos son obligatorios y debe haber al menos un actor, una portada y un código de tráiler.",
	},
}

func T(lang Lang, key string) string {
	if m, ok := dict[lang]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := dict[LangEN][key]; ok {
		return v
	}
	return key
}

// ParseLang validates a language tag, falling back to def.
func ParseLang(v string, def Lang) Lang {
	switch Lang(v) {
	case LangEN, LangES:
		return Lang(v)
	}
	return def
}

// LangFromRequest reads the persisted language choice.
func LangFromRequest(r *http.Request, def Lang) Lang {
	c, err := r.Cookie(LangCookieName)
	if err != nil {
		return def
	}
	return ParseLang(c.Value, def)
}

// SetLangCookie persists the choice for a year, like the original toggle.
func SetLangCookie(w http.ResponseWriter, lang Lang) {
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    string(lang),
		Path:     "/",
		MaxAge:   LangCookieMaxAge,
		SameSite: http.SameSiteLaxMode,
	})
}
