package movie

import (
	"strconv"
	"strings"

	"moviedata/internal/tmdb"
)

const maxPeople = 5

// externalFields lists every column FromExternal can populate, id excluded.
var externalFields = []string{
	"title", "original_title", "overview", "tagline", "original_language", "imdb_id", "status",
	"release_date", "budget", "revenue", "runtime", "popularity",
	"vote_average", "rating", "imdb_rating", "avg_rating",
	"vote_count", "rating_count", "total_ratings",
	"genres", "keywords", "production_companies", "production_countries", "spoken_languages",
	"director", "writers", "cast",
}

var externalFieldSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(externalFields))
	for _, field := range externalFields {
		set[field] = struct{}{}
	}
	return set
}()

// EnrichableFields returns the columns an external movie record can supply.
// The identity column is never among them.
func EnrichableFields() []string {
	return append([]string(nil), externalFields...)
}

// IsEnrichable reports whether FromExternal can supply field.
func IsEnrichable(field string) bool {
	_, ok := externalFieldSet[strings.ToLower(strings.TrimSpace(field))]
	return ok
}

// NeedsCredits reports whether any of fields is sourced from the credits sub-resource.
func NeedsCredits(fields []string) bool {
	for _, field := range fields {
		if ClassOf(field) == ClassPeople {
			return true
		}
	}
	return false
}

// NeedsKeywords reports whether fields include the keywords column.
func NeedsKeywords(fields []string) bool {
	for _, field := range fields {
		if strings.EqualFold(strings.TrimSpace(field), "keywords") {
			return true
		}
	}
	return false
}

// FromExternal projects an external movie onto field. It reports false when
// the external record holds nothing usable: blank text, a zero number, or an
// empty list.
func FromExternal(field string, m *tmdb.Movie) (string, bool) {
	if m == nil {
		return "", false
	}
	name := strings.ToLower(strings.TrimSpace(field))
	switch name {
	case "id":
		return positiveInt(m.ID)
	case "title":
		return nonBlank(m.Title)
	case "original_title":
		return nonBlank(m.OriginalTitle)
	case "overview":
		return nonBlank(m.Overview)
	case "tagline":
		return nonBlank(m.Tagline)
	case "original_language":
		return nonBlank(m.OriginalLanguage)
	case "imdb_id":
		return nonBlank(m.IMDbID)
	case "status":
		return nonBlank(m.Status)
	case "release_date":
		return nonBlank(m.ReleaseDate)
	case "budget":
		return positiveInt(m.Budget)
	case "revenue":
		return positiveInt(m.Revenue)
	case "runtime":
		return positiveInt(int64(m.Runtime))
	case "popularity":
		return positiveFloat(m.Popularity)
	case "vote_count", "rating_count", "total_ratings":
		return positiveInt(m.VoteCount)
	case "genres":
		return joinNamed(m.Genres)
	case "production_companies":
		return joinNamed(m.ProductionCompanies)
	case "production_countries":
		names := make([]string, 0, len(m.ProductionCountries))
		for _, c := range m.ProductionCountries {
			names = append(names, c.Name)
		}
		return joinUnique(names, 0)
	case "spoken_languages":
		names := make([]string, 0, len(m.SpokenLanguages))
		for _, l := range m.SpokenLanguages {
			names = append(names, l.DisplayName())
		}
		return joinUnique(names, 0)
	case "keywords":
		if m.Keywords == nil {
			return "", false
		}
		return joinNamed(m.Keywords.Keywords)
	case "director":
		if m.Credits == nil {
			return "", false
		}
		for _, crew := range m.Credits.Crew {
			if crew.Job == "Director" && strings.TrimSpace(crew.Name) != "" {
				return strings.TrimSpace(crew.Name), true
			}
		}
		return "", false
	case "writers":
		if m.Credits == nil {
			return "", false
		}
		names := make([]string, 0, len(m.Credits.Crew))
		for _, crew := range m.Credits.Crew {
			if crew.Department == "Writing" {
				names = append(names, crew.Name)
			}
		}
		return joinUnique(names, maxPeople)
	case "cast":
		if m.Credits == nil {
			return "", false
		}
		names := make([]string, 0, len(m.Credits.Cast))
		for _, member := range m.Credits.Cast {
			names = append(names, member.Name)
		}
		return joinUnique(names, maxPeople)
	}
	if ClassOf(name) == ClassRating {
		return positiveFloat(m.VoteAverage)
	}
	return "", false
}

func nonBlank(value string) (string, bool) {
	value = strings.TrimSpace(value)
	return value, value != ""
}

func positiveInt(n int64) (string, bool) {
	if n <= 0 {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}

func positiveFloat(n float64) (string, bool) {
	if n <= 0 {
		return "", false
	}
	return FormatNumber(n), true
}

func joinNamed(items []tmdb.Named) (string, bool) {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return joinUnique(names, 0)
}

// joinUnique trims, drops blanks and repeats, keeps first-seen order, and
// stops after limit names when limit is positive.
func joinUnique(names []string, limit int) (string, bool) {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if len(out) == 0 {
		return "", false
	}
	return JoinList(out), true
}
