package tmdb

import "context"

// Named is a TMDB object that carries an id and a display name (genres,
// companies, keywords).
type Named struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Country describes a production country entry.
type Country struct {
	ISO3166 string `json:"iso_3166_1"`
	Name    string `json:"name"`
}

// Language describes a spoken language entry.
type Language struct {
	ISO639      string `json:"iso_639_1"`
	EnglishName string `json:"english_name"`
	Name        string `json:"name"`
}

// DisplayName prefers the English language name.
func (l Language) DisplayName() string {
	if l.EnglishName != "" {
		return l.EnglishName
	}
	return l.Name
}

// CastMember is one billed cast entry.
type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

// CrewMember is one crew entry with its job label.
type CrewMember struct {
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

// Credits holds the embedded credits sub-resource.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Keywords holds the embedded keywords sub-resource.
type Keywords struct {
	Keywords []Named `json:"keywords"`
}

// Movie is the TMDB movie details payload.
type Movie struct {
	ID                  int64      `json:"id"`
	IMDbID              string     `json:"imdb_id"`
	Title               string     `json:"title"`
	OriginalTitle       string     `json:"original_title"`
	OriginalLanguage    string     `json:"original_language"`
	Overview            string     `json:"overview"`
	Tagline             string     `json:"tagline"`
	Status              string     `json:"status"`
	ReleaseDate         string     `json:"release_date"`
	Budget              int64      `json:"budget"`
	Revenue             int64      `json:"revenue"`
	Runtime             int        `json:"runtime"`
	Popularity          float64    `json:"popularity"`
	VoteAverage         float64    `json:"vote_average"`
	VoteCount           int64      `json:"vote_count"`
	Genres              []Named    `json:"genres"`
	ProductionCompanies []Named    `json:"production_companies"`
	ProductionCountries []Country  `json:"production_countries"`
	SpokenLanguages     []Language `json:"spoken_languages"`
	Credits             *Credits   `json:"credits,omitempty"`
	Keywords            *Keywords  `json:"keywords,omitempty"`
}

// SearchResult represents a single TMDB search match.
type SearchResult struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	ReleaseDate   string  `json:"release_date"`
	Popularity    float64 `json:"popularity"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int64   `json:"vote_count"`
}

// SearchResponse models the TMDB paginated search response.
type SearchResponse struct {
	Page         int            `json:"page"`
	Results      []SearchResult `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// Sub-resources accepted by MovieDetails.
const (
	AppendCredits  = "credits"
	AppendKeywords = "keywords"
)

// Fetcher defines the TMDB operations used by enrichment and validation.
type Fetcher interface {
	MovieDetails(ctx context.Context, movieID int64, appendTo ...string) (*Movie, error)
	SearchMovie(ctx context.Context, query string, year int) (*SearchResponse, error)
}
