package searchindex

import "context"

// NumericFilter constrains one numeric field. Op is one of ">=", "<=", "=".
type NumericFilter struct {
	Field string  `json:"field"`
	Op    string  `json:"op"`
	Value float64 `json:"value"`
}

// GeoFilter restricts hits to a radius around a point.
type GeoFilter struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	RadiusKm  float64 `json:"radius_km"`
}

// Query is the index-side search vocabulary. Filters are exact facet
// matches; array-valued object fields match when they contain the value.
type Query struct {
	Text           string            `json:"query"`
	Filters        map[string]string `json:"filters,omitempty"`
	NumericFilters []NumericFilter   `json:"numeric_filters,omitempty"`
	Geo            *GeoFilter        `json:"geo,omitempty"`
	Page           int               `json:"page"` // 1-based
	HitsPerPage    int               `json:"hits_per_page"`
}

type Result struct {
	Hits  []map[string]any `json:"hits"`
	Total int              `json:"total"`
	Pages int              `json:"pages"`
}

// Index is the primary search collaborator. Objects are schemaless documents
// carrying an "objectID" field.
type Index interface {
	Search(ctx context.Context, indexName string, q Query) (*Result, error)
	SaveObject(ctx context.Context, indexName string, object map[string]any) error
	DeleteObject(ctx context.Context, indexName, objectID string) error
	BrowseAll(ctx context.Context, indexName string) ([]map[string]any, error)
}
