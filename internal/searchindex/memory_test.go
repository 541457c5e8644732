package searchindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedIndex(t *testing.T, idx *MemoryIndex) {
	t.Helper()
	ctx := context.Background()

	objects := []map[string]any{
		{
			"objectID": "j1", "title": "Boiler repair", "status": "open",
			"service_type": "boiler repair", "skills": []string{"plumbing", "gas"},
			"budget": 250.0, "quote_count": 0, "created_ts": 300.0,
			"lat": 51.55, "lng": 0.02,
		},
		{
			"objectID": "j2", "title": "Garden fencing", "status": "open",
			"service_type": "fencing", "skills": []string{"carpentry"},
			"budget": 900.0, "quote_count": 2, "created_ts": 200.0,
			"lat": 53.48, "lng": -2.24,
		},
		{
			"objectID": "j3", "title": "Bathroom tiling", "status": "assigned",
			"service_type": "tiling", "budget": 400.0, "quote_count": 3,
			"created_ts": 100.0,
		},
	}
	for _, object := range objects {
		require.NoError(t, idx.SaveObject(ctx, "jobs", object))
	}
}

func TestMemoryIndexFacetAndText(t *testing.T) {
	idx := NewMemoryIndex()
	seedIndex(t, idx)

	res, err := idx.Search(context.Background(), "jobs", Query{
		Text:    "boiler",
		Filters: map[string]string{"status": "open"},
	})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "j1", res.Hits[0]["objectID"])
}

func TestMemoryIndexArrayMembership(t *testing.T) {
	idx := NewMemoryIndex()
	seedIndex(t, idx)

	res, err := idx.Search(context.Background(), "jobs", Query{
		Filters: map[string]string{"skills": "carpentry"},
	})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "j2", res.Hits[0]["objectID"])
}

func TestMemoryIndexNumericFilters(t *testing.T) {
	idx := NewMemoryIndex()
	seedIndex(t, idx)

	res, err := idx.Search(context.Background(), "jobs", Query{
		Filters: map[string]string{"status": "open"},
		NumericFilters: []NumericFilter{
			{Field: "budget", Op: ">=", Value: 500},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "j2", res.Hits[0]["objectID"])

	res, err = idx.Search(context.Background(), "jobs", Query{
		NumericFilters: []NumericFilter{{Field: "quote_count", Op: "=", Value: 0}},
	})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "j1", res.Hits[0]["objectID"])
}

func TestMemoryIndexGeoRadius(t *testing.T) {
	idx := NewMemoryIndex()
	seedIndex(t, idx)

	// Around east London: only j1 is within 25km. j3 has no coordinates and
	// is excluded by a geo query.
	res, err := idx.Search(context.Background(), "jobs", Query{
		Geo: &GeoFilter{Latitude: 51.54, Longitude: 0.0, RadiusKm: 25},
	})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "j1", res.Hits[0]["objectID"])
}

func TestMemoryIndexPagination(t *testing.T) {
	idx := NewMemoryIndex()
	seedIndex(t, idx)

	res, err := idx.Search(context.Background(), "jobs", Query{Page: 1, HitsPerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Pages)
	require.Len(t, res.Hits, 2)
	// Newest first by created_ts.
	assert.Equal(t, "j1", res.Hits[0]["objectID"])
	assert.Equal(t, "j2", res.Hits[1]["objectID"])

	res, err = idx.Search(context.Background(), "jobs", Query{Page: 2, HitsPerPage: 2})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "j3", res.Hits[0]["objectID"])
}

func TestMemoryIndexOrdersByRecencyNotObjectID(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	// objectID order is the reverse of recency; created_at is the RFC3339
	// string real documents carry, so only created_ts can order them.
	docs := []map[string]any{
		{"objectID": "a-oldest", "status": "open", "created_at": "2026-08-01T09:00:00Z", "created_ts": 100.0},
		{"objectID": "b-middle", "status": "open", "created_at": "2026-08-15T09:00:00Z", "created_ts": 200.0},
		{"objectID": "c-newest", "status": "open", "created_at": "2026-08-30T09:00:00Z", "created_ts": 300.0},
	}
	for _, doc := range docs {
		require.NoError(t, idx.SaveObject(ctx, "jobs", doc))
	}

	res, err := idx.Search(ctx, "jobs", Query{Page: 1, HitsPerPage: 2})
	require.NoError(t, err)
	require.Len(t, res.Hits, 2)
	assert.Equal(t, "c-newest", res.Hits[0]["objectID"])
	assert.Equal(t, "b-middle", res.Hits[1]["objectID"])

	res, err = idx.Search(ctx, "jobs", Query{Page: 2, HitsPerPage: 2})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "a-oldest", res.Hits[0]["objectID"])
}

func TestMemoryIndexSaveRequiresObjectID(t *testing.T) {
	idx := NewMemoryIndex()
	err := idx.SaveObject(context.Background(), "jobs", map[string]any{"title": "x"})
	assert.ErrorIs(t, err, ErrMissingObjectID)
}

func TestMemoryIndexDelete(t *testing.T) {
	idx := NewMemoryIndex()
	seedIndex(t, idx)

	require.NoError(t, idx.DeleteObject(context.Background(), "jobs", "j1"))
	all, err := idx.BrowseAll(context.Background(), "jobs")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
