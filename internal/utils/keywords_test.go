package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords(t *testing.T) {
	keywords := ExtractKeywords(
		"Leaking boiler needs repair!",
		"Boiler Repair",
		"East Ham",
	)

	assert.Contains(t, keywords, "leaking")
	assert.Contains(t, keywords, "boiler")
	assert.Contains(t, keywords, "repair")
	assert.Contains(t, keywords, "boiler repair", "whole phrase should be indexed")
	assert.Contains(t, keywords, "east ham")

	// Stopwords are dropped; three letters is enough to keep a word.
	assert.NotContains(t, keywords, "needs")
	assert.Contains(t, keywords, "ham")
}

func TestExtractKeywordsDropsShortWords(t *testing.T) {
	// Every word is under three characters, so neither the words nor the
	// whole phrase carry any signal.
	assert.Empty(t, ExtractKeywords("TV in E7"))

	keywords := ExtractKeywords("TV aerial fitting in E7")
	assert.NotContains(t, keywords, "tv")
	assert.NotContains(t, keywords, "e7")
	assert.Contains(t, keywords, "aerial")
	assert.Contains(t, keywords, "tv aerial fitting in e7")
}

func TestExtractKeywordsDeduplicates(t *testing.T) {
	keywords := ExtractKeywords("boiler boiler BOILER", "boiler")

	count := 0
	for _, kw := range keywords {
		if kw == "boiler" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestExtractKeywordsEmptyInput(t *testing.T) {
	assert.Empty(t, ExtractKeywords("", "  ", "a b"))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"East London", "east-london"},
		{"  Stratford & Bow  ", "stratford-bow"},
		{"already-a-slug", "already-a-slug"},
		{"!!!", ""},
		{"E7", "e7"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}

func TestFirstNonEmptySlug(t *testing.T) {
	assert.Equal(t, "east-ham", FirstNonEmptySlug("", "!!!", "East Ham", "Newham"))
	assert.Equal(t, "", FirstNonEmptySlug("", "  "))
}
