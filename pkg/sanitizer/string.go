package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims the string and collapses interior runs of
// whitespace to a single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeTitle(title string) string {
	return TrimAndNormalize(title)
}

func NormalizeLocation(location string) string {
	return TrimAndNormalize(location)
}

// NormalizeUsername lowercases the login handle so uniqueness is
// case-insensitive.
func NormalizeUsername(username string) string {
	return strings.ToLower(TrimAndNormalize(username))
}
