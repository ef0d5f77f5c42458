package domain

// Catalog records mirror the movie service's REST resources. The *Name
// fields are denormalized read-side values and are ignored on writes.

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Country struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Actor struct {
	ID          int    `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	CountryID   int    `json:"countryId"`
	CountryName string `json:"countryName,omitempty"`
}

type Director struct {
	ID          int    `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	CountryID   int    `json:"countryId"`
	CountryName string `json:"countryName,omitempty"`
}

type Movie struct {
	ID               int      `json:"id"`
	Title            string   `json:"title"`
	Review           string   `json:"review"`
	GenreID          int      `json:"genreId"`
	GenreName        string   `json:"genreName,omitempty"`
	CountryID        int      `json:"countryId"`
	CountryName      string   `json:"countryName,omitempty"`
	DirectorID       int      `json:"directorId"`
	DirectorFullName string   `json:"directorFullName,omitempty"`
	ActorIDs         []int    `json:"actorIds"`
	ActorFullNames   []string `json:"actorFullNames,omitempty"`
	CoverImageURL    string   `json:"coverImageUrl"`
	TrailerCode      string   `json:"trailerCode"`
}

func (a Actor) FullName() string    { return a.FirstName + " " + a.LastName }
func (d Director) FullName() string { return d.FirstName + " " + d.LastName }
