package utils

import (
	"strings"
	"unicode"
)

// Words shorter than minKeywordLen or listed here carry no search signal.
const minKeywordLen = 3

var stopwords = map[string]struct{}{
	"and": {}, "the": {}, "for": {}, "with": {}, "from": {}, "this": {},
	"that": {}, "are": {}, "was": {}, "has": {}, "have": {}, "need": {},
	"needs": {}, "needed": {}, "our": {}, "your": {}, "please": {},
}

// ExtractKeywords derives the search keyword set persisted on a job: every
// source field is lower-cased, stripped of punctuation and split into words;
// short words and stopwords are dropped; each non-empty field is also kept
// as a whole normalized phrase so exact service-type and town lookups hit.
// Order is first-seen, duplicates removed.
func ExtractKeywords(fields ...string) []string {
	seen := make(map[string]struct{})
	var keywords []string

	add := func(kw string) {
		if kw == "" {
			return
		}
		if _, ok := seen[kw]; ok {
			return
		}
		seen[kw] = struct{}{}
		keywords = append(keywords, kw)
	}

	for _, field := range fields {
		normalized := normalizeText(field)
		if normalized == "" {
			continue
		}

		hasSignal := false
		for _, word := range strings.Fields(normalized) {
			if len(word) < minKeywordLen {
				continue
			}
			if _, stop := stopwords[word]; stop {
				continue
			}
			add(word)
			hasSignal = true
		}

		// Whole phrase, when it is more than a single word and at least
		// one of its words carried signal on its own.
		if hasSignal && strings.Contains(normalized, " ") {
			add(normalized)
		}
	}

	return keywords
}

func normalizeText(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '/':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
