package movie

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ListSeparator joins list elements at rest.
const ListSeparator = ", "

var emptyListLiterals = map[string]struct{}{
	"":      {},
	"[]":    {},
	"[ ]":   {},
	"{}":    {},
	"()":    {},
	"nan":   {},
	"none":  {},
	"null":  {},
	"false": {},
	"n/a":   {},
}

// dictNamePattern pulls the name out of literal dict elements such as
// {'id': 28, 'name': 'Action'}.
var dictNamePattern = regexp.MustCompile(`["']name["']\s*:\s*(?:"([^"]*)"|'([^']*)')`)

// ParseList parses a stored list value. It accepts a JSON array, a bracketed
// literal list with quoted elements (optionally dicts carrying a name key),
// or a comma-separated string. Empty literals parse as an empty list;
// ok is false only when the value looks like a bracketed list but is
// malformed.
func ParseList(value string) (items []string, ok bool) {
	trimmed := strings.TrimSpace(value)
	if _, empty := emptyListLiterals[strings.ToLower(trimmed)]; empty {
		return nil, true
	}
	if !strings.HasPrefix(trimmed, "[") {
		return splitComma(trimmed), true
	}
	if !strings.HasSuffix(trimmed, "]") {
		return nil, false
	}
	if items, ok := parseJSONList(trimmed); ok {
		return items, true
	}
	return parseLiteralList(trimmed[1 : len(trimmed)-1])
}

// JoinList serializes elements comma-joined.
func JoinList(items []string) string {
	return strings.Join(items, ListSeparator)
}

// CountItems returns the number of list elements in value, treating an
// unparsable list as empty.
func CountItems(value string) int {
	items, _ := ParseList(value)
	return len(items)
}

func splitComma(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseJSONList(value string) ([]string, bool) {
	var raw []any
	if err := json.Unmarshal([]byte(value), &raw); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, element := range raw {
		switch v := element.(type) {
		case string:
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		case float64:
			out = append(out, FormatNumber(v))
		case map[string]any:
			for _, key := range []string{"name", "english_name"} {
				if name, ok := v[key].(string); ok && strings.TrimSpace(name) != "" {
					out = append(out, strings.TrimSpace(name))
					break
				}
			}
		}
	}
	return out, true
}

// parseLiteralList tokenizes the inside of a bracketed list whose elements
// use single or double quotes.
func parseLiteralList(inner string) ([]string, bool) {
	if strings.Contains(inner, "{") {
		matches := dictNamePattern.FindAllStringSubmatch(inner, -1)
		if len(matches) == 0 {
			return nil, false
		}
		out := make([]string, 0, len(matches))
		for _, m := range matches {
			name := m[1]
			if name == "" {
				name = m[2]
			}
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
		}
		return out, true
	}

	var (
		out     []string
		current strings.Builder
		quote   rune
		quoted  bool
	)
	flush := func() {
		token := strings.TrimSpace(current.String())
		if !quoted {
			token = strings.Trim(token, `"'`)
		}
		if token != "" {
			out = append(out, token)
		}
		current.Reset()
		quoted = false
	}
	for _, r := range inner {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			quoted = true
		case r == ',':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, false
	}
	flush()
	return out, true
}
