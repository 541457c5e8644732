package searchindex

import (
	"context"
	"sort"
	"strings"
	"sync"

	"tradematch_backend/internal/geo"
)

// MemoryIndex is a process-local Index. It backs tests and zero-config
// deployments; the hosted index service replaces it in production.
type MemoryIndex struct {
	mu      sync.RWMutex
	indexes map[string]map[string]map[string]any
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{indexes: make(map[string]map[string]map[string]any)}
}

func (m *MemoryIndex) SaveObject(_ context.Context, indexName string, object map[string]any) error {
	objectID, _ := object["objectID"].(string)
	if objectID == "" {
		return ErrMissingObjectID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.indexes[indexName]
	if !ok {
		idx = make(map[string]map[string]any)
		m.indexes[indexName] = idx
	}
	idx[objectID] = object
	return nil
}

func (m *MemoryIndex) DeleteObject(_ context.Context, indexName, objectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if idx, ok := m.indexes[indexName]; ok {
		delete(idx, objectID)
	}
	return nil
}

func (m *MemoryIndex) BrowseAll(_ context.Context, indexName string) ([]map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var objects []map[string]any
	for _, object := range m.indexes[indexName] {
		objects = append(objects, object)
	}
	return objects, nil
}

func (m *MemoryIndex) Search(_ context.Context, indexName string, q Query) (*Result, error) {
	m.mu.RLock()
	var matched []map[string]any
	for _, object := range m.indexes[indexName] {
		if m.matches(object, q) {
			matched = append(matched, object)
		}
	}
	m.mu.RUnlock()

	// Deterministic order: newest first by the numeric created_ts
	// (created_at is an RFC3339 string, useless as a sort key), then
	// objectID.
	sort.Slice(matched, func(i, j int) bool {
		ci, _ := toFloat(matched[i]["created_ts"])
		cj, _ := toFloat(matched[j]["created_ts"])
		if ci != cj {
			return ci > cj
		}
		idI, _ := matched[i]["objectID"].(string)
		idJ, _ := matched[j]["objectID"].(string)
		return idI < idJ
	})

	total := len(matched)
	hitsPerPage := q.HitsPerPage
	if hitsPerPage <= 0 {
		hitsPerPage = 20
	}
	page := q.Page
	if page < 1 {
		page = 1
	}

	start := (page - 1) * hitsPerPage
	if start > total {
		start = total
	}
	end := start + hitsPerPage
	if end > total {
		end = total
	}

	pages := (total + hitsPerPage - 1) / hitsPerPage

	return &Result{
		Hits:  matched[start:end],
		Total: total,
		Pages: pages,
	}, nil
}

func (m *MemoryIndex) matches(object map[string]any, q Query) bool {
	if q.Text != "" && !m.matchesText(object, q.Text) {
		return false
	}

	for field, want := range q.Filters {
		if !m.matchesFacet(object[field], want) {
			return false
		}
	}

	for _, nf := range q.NumericFilters {
		value, ok := toFloat(object[nf.Field])
		if !ok {
			return false
		}
		switch nf.Op {
		case ">=":
			if value < nf.Value {
				return false
			}
		case "<=":
			if value > nf.Value {
				return false
			}
		case "=":
			if value != nf.Value {
				return false
			}
		default:
			return false
		}
	}

	if q.Geo != nil {
		lat, latOK := toFloat(object["lat"])
		lng, lngOK := toFloat(object["lng"])
		if !latOK || !lngOK {
			return false
		}
		if geo.DistanceKm(q.Geo.Latitude, q.Geo.Longitude, lat, lng) > q.Geo.RadiusKm {
			return false
		}
	}

	return true
}

func (m *MemoryIndex) matchesText(object map[string]any, text string) bool {
	needle := strings.ToLower(text)
	for _, value := range object {
		switch v := value.(type) {
		case string:
			if strings.Contains(strings.ToLower(v), needle) {
				return true
			}
		case []string:
			for _, s := range v {
				if strings.Contains(strings.ToLower(s), needle) {
					return true
				}
			}
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok && strings.Contains(strings.ToLower(s), needle) {
					return true
				}
			}
		}
	}
	return false
}

// matchesFacet: scalar fields match on equality, array fields on membership.
func (m *MemoryIndex) matchesFacet(value any, want string) bool {
	switch v := value.(type) {
	case string:
		return strings.EqualFold(v, want)
	case []string:
		for _, s := range v {
			if strings.EqualFold(s, want) {
				return true
			}
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.EqualFold(s, want) {
				return true
			}
		}
	}
	return false
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
