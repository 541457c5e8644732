package utils

import (
	"strings"
	"unicode"
)

// Slugify turns free text into a URL-safe identifier: lower-case, runs of
// non-alphanumerics collapsed to single hyphens, no leading/trailing hyphen.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen

	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteRune('-')
			lastHyphen = true
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}

// FirstNonEmptySlug slugifies candidates in order and returns the first
// that survives slugification. Used for the city-slug preference chain.
func FirstNonEmptySlug(candidates ...string) string {
	for _, c := range candidates {
		if slug := Slugify(c); slug != "" {
			return slug
		}
	}
	return ""
}
