package movie

import "strings"

// FieldClass groups columns that share missingness, arbitration, and
// validation behavior.
type FieldClass int

const (
	ClassOther FieldClass = iota
	ClassIdentity
	ClassTitle
	ClassText
	ClassPeople
	ClassDate
	ClassFinancial
	ClassRuntime
	ClassPopularity
	ClassCount
	ClassRating
	ClassList
)

var classNames = map[FieldClass]string{
	ClassOther:      "other",
	ClassIdentity:   "identity",
	ClassTitle:      "title",
	ClassText:       "text",
	ClassPeople:     "people",
	ClassDate:       "date",
	ClassFinancial:  "financial",
	ClassRuntime:    "runtime",
	ClassPopularity: "popularity",
	ClassCount:      "count",
	ClassRating:     "rating",
	ClassList:       "list",
}

func (c FieldClass) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return "unknown"
}

// Numeric reports whether values of the class are numbers.
func (c FieldClass) Numeric() bool {
	return capabilities[c].missing == missingNumber
}

// MultiValued reports whether values of the class are comma-joined lists.
func (c FieldClass) MultiValued() bool {
	return capabilities[c].choose == chooseRicher
}

var columnClasses = map[string]FieldClass{
	"id":                   ClassIdentity,
	"title":                ClassTitle,
	"original_title":       ClassTitle,
	"overview":             ClassText,
	"tagline":              ClassText,
	"original_language":    ClassText,
	"imdb_id":              ClassText,
	"status":               ClassText,
	"director":             ClassPeople,
	"writers":              ClassPeople,
	"cast":                 ClassPeople,
	"release_date":         ClassDate,
	"budget":               ClassFinancial,
	"revenue":              ClassFinancial,
	"runtime":              ClassRuntime,
	"popularity":           ClassPopularity,
	"vote_count":           ClassCount,
	"rating_count":         ClassCount,
	"total_ratings":        ClassCount,
	"vote_average":         ClassRating,
	"rating":               ClassRating,
	"imdb_rating":          ClassRating,
	"avg_rating":           ClassRating,
	"genres":               ClassList,
	"keywords":             ClassList,
	"production_companies": ClassList,
	"production_countries": ClassList,
	"spoken_languages":     ClassList,
}

// ClassOf returns the class of a column name. Matching ignores case and
// surrounding whitespace; unknown columns are ClassOther.
func ClassOf(field string) FieldClass {
	if class, ok := columnClasses[strings.ToLower(strings.TrimSpace(field))]; ok {
		return class
	}
	return ClassOther
}

type missingRule int

const (
	missingText missingRule = iota
	missingNumber
	missingList
)

type chooseRule int

const (
	chooseCandidate chooseRule = iota
	chooseLarger
	chooseRuntime
	chooseRicher
)

type capability struct {
	missing missingRule
	choose  chooseRule
}

// capabilities is the per-class behavior table consulted by IsMissing and Choose.
var capabilities = map[FieldClass]capability{
	ClassOther:      {missing: missingText, choose: chooseCandidate},
	ClassIdentity:   {missing: missingText, choose: chooseCandidate},
	ClassTitle:      {missing: missingText, choose: chooseCandidate},
	ClassText:       {missing: missingText, choose: chooseCandidate},
	ClassPeople:     {missing: missingText, choose: chooseRicher},
	ClassDate:       {missing: missingText, choose: chooseCandidate},
	ClassFinancial:  {missing: missingNumber, choose: chooseCandidate},
	ClassRuntime:    {missing: missingNumber, choose: chooseRuntime},
	ClassPopularity: {missing: missingNumber, choose: chooseCandidate},
	ClassCount:      {missing: missingNumber, choose: chooseLarger},
	ClassRating:     {missing: missingNumber, choose: chooseLarger},
	ClassList:       {missing: missingList, choose: chooseRicher},
}
