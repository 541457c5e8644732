package geo

import (
	"context"
	"strings"
)

// Result is one resolved postcode or outcode.
type Result struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	District  string  `json:"district"`
	Ward      string  `json:"ward"`
	Country   string  `json:"country"`
}

// Geocoder resolves a full postcode ("E7 9JH") or a bare outcode ("E7") to
// coordinates and administrative region names. A lookup that finds nothing
// returns (nil, nil); only transport failures return an error.
type Geocoder interface {
	Resolve(ctx context.Context, postcode string) (*Result, error)
}

// NormalizePostcode upper-cases and collapses interior whitespace so "e7 9jh",
// "E7  9JH" and "E7 9JH" share one cache key.
func NormalizePostcode(postcode string) string {
	return strings.Join(strings.Fields(strings.ToUpper(postcode)), " ")
}

// Outcode returns the text before the first space of a normalized postcode.
// For a bare outcode the whole string comes back.
func Outcode(postcode string) string {
	normalized := NormalizePostcode(postcode)
	if idx := strings.IndexByte(normalized, ' '); idx > 0 {
		return normalized[:idx]
	}
	return normalized
}

// IsOutcode reports whether the input looks like an outcode rather than a
// full postcode: no interior space and at most four characters.
func IsOutcode(postcode string) bool {
	normalized := NormalizePostcode(postcode)
	return normalized != "" && !strings.Contains(normalized, " ") && len(normalized) <= 4
}
