// Package movie defines the tabular movie dataset and the field semantics the
// pipeline stages share.
//
// A Dataset is an ordered list of string-valued Records loaded from CSV. Each
// column name maps to a FieldClass, and the class decides how missingness is
// judged (IsMissing), which of two candidate values wins (Choose), and how a
// TMDB movie is projected onto the column (FromExternal). List-valued columns
// are stored comma-joined at rest, so elements containing commas do not
// round-trip.
package movie
