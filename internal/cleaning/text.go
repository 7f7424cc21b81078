package cleaning

import (
	"html"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// mojibake maps UTF-8 text that was decoded as Windows-1252 back to the
// intended characters.
var mojibake = strings.NewReplacer(
	"â€™", "’",
	"â€˜", "‘",
	"â€œ", "“",
	"â€\u009d", "”",
	"â€“", "–",
	"â€”", "—",
	"â€¦", "…",
	"Ã©", "é",
	"Ã¨", "è",
	"Ãª", "ê",
	"Ã«", "ë",
	"Ã¡", "á",
	"Ã¢", "â",
	"Ã¤", "ä",
	"Ã¥", "å",
	"Ã\u00a0", "à",
	"Ã§", "ç",
	"Ã\u00ad", "í",
	"Ã¯", "ï",
	"Ã±", "ñ",
	"Ã³", "ó",
	"Ã´", "ô",
	"Ã¶", "ö",
	"Ã¸", "ø",
	"Ãº", "ú",
	"Ã¼", "ü",
	"Ã‰", "É",
	"Â\u00a0", " ",
	"Â·", "·",
)

var nullLike = map[string]struct{}{
	"nan":  {},
	"none": {},
	"null": {},
}

// textFixes records which repairs changed a value.
type textFixes struct {
	encoding   bool
	html       bool
	control    bool
	whitespace bool
}

// CleanText repairs mojibake and HTML entities, strips control characters,
// collapses whitespace runs, and applies NFC normalization. Blank and
// null-like input ("nan", "None", "null") yields "".
func CleanText(value string) string {
	cleaned, _ := cleanText(value)
	return cleaned
}

func cleanText(value string) (string, textFixes) {
	var fixes textFixes
	current := value
	// Repairs repeat until nothing changes so nested entities fully unwind.
	for {
		next := mojibake.Replace(current)
		if next != current {
			fixes.encoding = true
		}
		if unescaped := html.UnescapeString(next); unescaped != next {
			fixes.html = true
			next = unescaped
		}
		if stripped := stripControl(next); stripped != next {
			fixes.control = true
			next = stripped
		}
		if collapsed := strings.Join(strings.Fields(next), " "); collapsed != next {
			fixes.whitespace = true
			next = collapsed
		}
		next = norm.NFC.String(next)
		if next == current {
			break
		}
		current = next
	}
	if _, ok := nullLike[strings.ToLower(current)]; ok {
		return "", fixes
	}
	return current, fixes
}

// stripControl drops control characters other than whitespace, which the
// whitespace pass collapses instead.
func stripControl(value string) string {
	if !strings.ContainsFunc(value, isStrippable) {
		return value
	}
	return strings.Map(func(r rune) rune {
		if isStrippable(r) {
			return -1
		}
		return r
	}, value)
}

func isStrippable(r rune) bool {
	return (unicode.IsControl(r) && !unicode.IsSpace(r)) || r == '\u200b' || r == '\ufeff'
}
