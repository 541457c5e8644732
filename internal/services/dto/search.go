package dto

import "time"

type SearchJobsRequest struct {
	Query            string   `form:"query"`
	Location         string   `form:"location"` // "lat,lng"
	RadiusKm         float64  `form:"radius_km"`
	ServiceType      string   `form:"service_type"`
	Skills           []string `form:"skills"`
	MinBudget        *float64 `form:"min_budget"`
	MaxBudget        *float64 `form:"max_budget"`
	Urgency          string   `form:"urgency" validate:"is-urgency"`
	NoQuotesOnly     bool     `form:"no_quotes"`
	PostedWithinDays int      `form:"posted_within_days"`
	SortBy           string   `form:"sort_by" validate:"is-sort-key"`
	Page             int      `form:"page"`
	PageSize         int      `form:"page_size" validate:"omitempty,min=1,max=100"`
}

type SearchTradespeopleRequest struct {
	Query       string   `form:"query"`
	Location    string   `form:"location"`
	RadiusKm    float64  `form:"radius_km"`
	ServiceType string   `form:"service_type"`
	Skills      []string `form:"skills"`
	MinRate     *float64 `form:"min_rate"`
	MaxRate     *float64 `form:"max_rate"`
	SortBy      string   `form:"sort_by"`
	Page        int      `form:"page"`
	PageSize    int      `form:"page_size" validate:"omitempty,min=1,max=100"`
}

type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// FilterSummary echoes what the caller actually filtered on. AnyFilterActive
// is what the fallback decision keys off.
type FilterSummary struct {
	Query            string   `json:"query,omitempty"`
	Location         string   `json:"location,omitempty"`
	RadiusKm         float64  `json:"radius_km,omitempty"`
	ServiceType      string   `json:"service_type,omitempty"`
	Skills           []string `json:"skills,omitempty"`
	MinBudget        *float64 `json:"min_budget,omitempty"`
	MaxBudget        *float64 `json:"max_budget,omitempty"`
	Urgency          string   `json:"urgency,omitempty"`
	NoQuotesOnly     bool     `json:"no_quotes,omitempty"`
	PostedWithinDays int      `json:"posted_within_days,omitempty"`
	SortBy           string   `json:"sort_by"`
	AnyFilterActive  bool     `json:"any_filter_active"`
}

type SearchStats struct {
	Count          int     `json:"count"`
	EmergencyCount int     `json:"emergency_count"`
	AverageBudget  float64 `json:"average_budget"`
}

// JobSearchItem is the normalized result shape shared by the indexed path
// and the repository fallback.
type JobSearchItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ServiceType string    `json:"service_type"`
	Skills      []string  `json:"skills,omitempty"`
	Town        string    `json:"town"`
	Postcode    string    `json:"postcode"`
	CitySlug    string    `json:"city_slug"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	Urgency     string    `json:"urgency"`
	Budget      *float64  `json:"budget,omitempty"`
	QuoteCount  int       `json:"quote_count"`
	CreatedAt   time.Time `json:"created_at"`
	DistanceKm  *float64  `json:"distance_km,omitempty"`
}

type SearchJobsResponse struct {
	Items      []JobSearchItem `json:"items"`
	Pagination Pagination      `json:"pagination"`
	Filters    FilterSummary   `json:"filters"`
	Stats      SearchStats     `json:"stats"`
}

type TradespersonSearchItem struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	ServiceAreas string   `json:"service_areas"`
	Specialties  []string `json:"specialties,omitempty"`
	Tier         string   `json:"tier"`
}

type SearchTradespeopleResponse struct {
	Items      []TradespersonSearchItem `json:"items"`
	Pagination Pagination               `json:"pagination"`
	Filters    FilterSummary            `json:"filters"`
	Stats      SearchStats              `json:"stats"`
}
