package movie

const (
	minPlausibleRuntime = 60
	maxPlausibleRuntime = 300
)

// Choose returns the better of the value already stored for field and a
// candidate from an external source. A missing current value always yields
// the candidate and a missing candidate never replaces a present value.
// Unparsable numbers compare as zero.
func Choose(field, current, candidate string) string {
	if IsMissing(field, current) {
		return candidate
	}
	if IsMissing(field, candidate) {
		return current
	}

	switch capabilities[ClassOf(field)].choose {
	case chooseLarger:
		if numberOrZero(current) > numberOrZero(candidate) {
			return current
		}
		return candidate
	case chooseRuntime:
		currentOK := plausibleRuntime(numberOrZero(current))
		if plausibleRuntime(numberOrZero(candidate)) || !currentOK {
			return candidate
		}
		return current
	case chooseRicher:
		if CountItems(current) > CountItems(candidate) {
			return current
		}
		return candidate
	default:
		// Reached only with both values present; a missing candidate
		// returned current above, even for fields preferring the candidate.
		return candidate
	}
}

func numberOrZero(value string) float64 {
	n, ok := ParseNumber(value)
	if !ok {
		return 0
	}
	return n
}

func plausibleRuntime(minutes float64) bool {
	return minutes >= minPlausibleRuntime && minutes <= maxPlausibleRuntime
}
