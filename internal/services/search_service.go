package services

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"tradematch_backend/internal/geo"
	"tradematch_backend/internal/logger"
	"tradematch_backend/internal/models"
	"tradematch_backend/internal/repositories"
	"tradematch_backend/internal/searchindex"
	"tradematch_backend/internal/services/dto"
)

const (
	SortNewest     = "newest"
	SortBudgetHigh = "budget_high"
	SortBudgetLow  = "budget_low"
	SortDistance   = "distance"
	SortUrgency    = "urgency"

	defaultPageSize = 20
	maxPageSize     = 100
)

// SearchService answers search pages. It never returns a hard error: index
// outages degrade to an empty result, and a bare query with zero hits falls
// back to a direct repository scan so the product keeps working while the
// index is cold or down.
type SearchService interface {
	SearchJobs(ctx context.Context, req *dto.SearchJobsRequest) *dto.SearchJobsResponse
	SearchTradespeople(ctx context.Context, req *dto.SearchTradespeopleRequest) *dto.SearchTradespeopleResponse
}

type SearchServiceImpl struct {
	jobRepo           repositories.JobRepository
	userRepo          repositories.UserRepository
	index             searchindex.Index
	jobsIndex         string
	tradespeopleIndex string

	now func() time.Time
}

func NewSearchService(
	jobRepo repositories.JobRepository,
	userRepo repositories.UserRepository,
	index searchindex.Index,
	jobsIndex, tradespeopleIndex string,
) SearchService {
	return &SearchServiceImpl{
		jobRepo:           jobRepo,
		userRepo:          userRepo,
		index:             index,
		jobsIndex:         jobsIndex,
		tradespeopleIndex: tradespeopleIndex,
		now:               time.Now,
	}
}

func (s *SearchServiceImpl) SearchJobs(ctx context.Context, req *dto.SearchJobsRequest) *dto.SearchJobsResponse {
	normalizeJobRequest(req)
	filters := jobFilterSummary(req)
	origin, hasOrigin := parseLatLng(req.Location)

	query := searchindex.Query{
		Text:        req.Query,
		Filters:     map[string]string{"status": string(models.JobStatusOpen)},
		Page:        req.Page,
		HitsPerPage: req.PageSize,
	}
	if req.ServiceType != "" {
		query.Filters["service_type"] = req.ServiceType
	}
	if req.Urgency != "" {
		query.Filters["urgency"] = req.Urgency
	}
	if len(req.Skills) > 0 {
		query.Filters["skills"] = req.Skills[0]
	}
	if req.MinBudget != nil {
		query.NumericFilters = append(query.NumericFilters, searchindex.NumericFilter{Field: "budget", Op: ">=", Value: *req.MinBudget})
	}
	if req.MaxBudget != nil {
		query.NumericFilters = append(query.NumericFilters, searchindex.NumericFilter{Field: "budget", Op: "<=", Value: *req.MaxBudget})
	}
	if req.NoQuotesOnly {
		query.NumericFilters = append(query.NumericFilters, searchindex.NumericFilter{Field: "quote_count", Op: "=", Value: 0})
	}
	if req.PostedWithinDays > 0 {
		cutoff := s.now().AddDate(0, 0, -req.PostedWithinDays)
		query.NumericFilters = append(query.NumericFilters, searchindex.NumericFilter{Field: "created_ts", Op: ">=", Value: float64(cutoff.Unix())})
	}

	geoApplied := hasOrigin && req.RadiusKm > 0
	if geoApplied {
		query.Geo = &searchindex.GeoFilter{Latitude: origin.lat, Longitude: origin.lng, RadiusKm: req.RadiusKm}
	}

	result, err := s.index.Search(ctx, s.jobsIndex, query)
	if err != nil {
		logger.CtxWithError(ctx, "job index search failed, returning empty result", err)
		return emptyJobsResponse(req, filters)
	}

	// Geo fallback: a radius that excludes everything is retried without
	// the geo constraint so the page still shows something nearby-ish.
	if geoApplied && len(result.Hits) == 0 {
		query.Geo = nil
		result, err = s.index.Search(ctx, s.jobsIndex, query)
		if err != nil {
			logger.CtxWithError(ctx, "job index geo-fallback search failed, returning empty result", err)
			return emptyJobsResponse(req, filters)
		}
	}

	var items []dto.JobSearchItem
	totalItems := result.Total

	if len(result.Hits) == 0 && !filters.AnyFilterActive {
		// Bare query, zero hits: scan the store directly. Once the caller
		// has narrowed the search the index is trusted to have zero
		// legitimately and no fallback runs.
		jobs, repoErr := s.jobRepo.FindOpen()
		if repoErr != nil {
			logger.CtxWithError(ctx, "job search fallback scan failed", repoErr)
			return emptyJobsResponse(req, filters)
		}
		all := s.filterJobsLocally(jobs, req, origin, hasOrigin)
		sortJobItems(all, req.SortBy)
		totalItems = len(all)
		items = pageSlice(all, req.Page, req.PageSize)
	} else {
		items = hitsToJobItems(result.Hits, origin, hasOrigin)
		sortJobItems(items, req.SortBy)
	}

	return &dto.SearchJobsResponse{
		Items:      items,
		Pagination: paginate(req.Page, req.PageSize, totalItems),
		Filters:    filters,
		Stats:      jobStats(items, totalItems),
	}
}

func normalizeJobRequest(req *dto.SearchJobsRequest) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}
	if req.SortBy == "" {
		req.SortBy = SortNewest
	}
}

func jobFilterSummary(req *dto.SearchJobsRequest) dto.FilterSummary {
	summary := dto.FilterSummary{
		Query:            req.Query,
		Location:         req.Location,
		RadiusKm:         req.RadiusKm,
		ServiceType:      req.ServiceType,
		Skills:           req.Skills,
		MinBudget:        req.MinBudget,
		MaxBudget:        req.MaxBudget,
		Urgency:          req.Urgency,
		NoQuotesOnly:     req.NoQuotesOnly,
		PostedWithinDays: req.PostedWithinDays,
		SortBy:           req.SortBy,
	}
	summary.AnyFilterActive = req.Query != "" ||
		req.Location != "" ||
		req.ServiceType != "" ||
		len(req.Skills) > 0 ||
		req.MinBudget != nil ||
		req.MaxBudget != nil ||
		req.Urgency != "" ||
		req.NoQuotesOnly ||
		req.PostedWithinDays > 0
	return summary
}

func emptyJobsResponse(req *dto.SearchJobsRequest, filters dto.FilterSummary) *dto.SearchJobsResponse {
	return &dto.SearchJobsResponse{
		Items:      []dto.JobSearchItem{},
		Pagination: paginate(req.Page, req.PageSize, 0),
		Filters:    filters,
		Stats:      dto.SearchStats{},
	}
}

type latLng struct {
	lat, lng float64
}

func parseLatLng(location string) (latLng, bool) {
	parts := strings.Split(location, ",")
	if len(parts) != 2 {
		return latLng{}, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return latLng{}, false
	}
	return latLng{lat: lat, lng: lng}, true
}

// filterJobsLocally applies the index filter semantics in memory: substring
// containment for the query, ranges for budget, a day window for recency
// and a zero check for quote count.
func (s *SearchServiceImpl) filterJobsLocally(jobs []models.Job, req *dto.SearchJobsRequest, origin latLng, hasOrigin bool) []dto.JobSearchItem {
	queryLower := strings.ToLower(strings.TrimSpace(req.Query))
	serviceTypeLower := strings.ToLower(strings.TrimSpace(req.ServiceType))
	var cutoff time.Time
	if req.PostedWithinDays > 0 {
		cutoff = s.now().AddDate(0, 0, -req.PostedWithinDays)
	}

	items := make([]dto.JobSearchItem, 0, len(jobs))
	for i := range jobs {
		job := &jobs[i]

		if queryLower != "" && !jobTextContains(job, queryLower) {
			continue
		}
		if serviceTypeLower != "" && strings.ToLower(job.ServiceType) != serviceTypeLower {
			continue
		}
		if len(req.Skills) > 0 && !hasAllSkills(job.GetSkills(), req.Skills) {
			continue
		}
		if req.MinBudget != nil && (job.Budget == nil || *job.Budget < *req.MinBudget) {
			continue
		}
		if req.MaxBudget != nil && (job.Budget == nil || *job.Budget > *req.MaxBudget) {
			continue
		}
		if req.Urgency != "" && string(job.Urgency) != req.Urgency {
			continue
		}
		if req.NoQuotesOnly && job.QuoteCount != 0 {
			continue
		}
		if req.PostedWithinDays > 0 && job.CreatedAt.Before(cutoff) {
			continue
		}
		if hasOrigin && req.RadiusKm > 0 {
			if job.Latitude == nil || job.Longitude == nil {
				continue
			}
			if geo.DistanceKm(origin.lat, origin.lng, *job.Latitude, *job.Longitude) > req.RadiusKm {
				continue
			}
		}

		items = append(items, jobToSearchItem(job, origin, hasOrigin))
	}
	return items
}

func jobTextContains(job *models.Job, queryLower string) bool {
	for _, field := range []string{job.Title, job.Description, job.Town, job.Postcode, job.CitySlug, job.Address} {
		if strings.Contains(strings.ToLower(field), queryLower) {
			return true
		}
	}
	return false
}

func hasAllSkills(jobSkills, wanted []string) bool {
	for _, want := range wanted {
		found := false
		for _, have := range jobSkills {
			if strings.EqualFold(have, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func jobToSearchItem(job *models.Job, origin latLng, hasOrigin bool) dto.JobSearchItem {
	item := dto.JobSearchItem{
		ID:          job.ID,
		Title:       job.Title,
		Description: job.Description,
		ServiceType: job.ServiceType,
		Skills:      job.GetSkills(),
		Town:        job.Town,
		Postcode:    job.Postcode,
		CitySlug:    job.CitySlug,
		Latitude:    job.Latitude,
		Longitude:   job.Longitude,
		Urgency:     string(job.Urgency),
		Budget:      job.Budget,
		QuoteCount:  job.QuoteCount,
		CreatedAt:   job.CreatedAt,
	}
	if hasOrigin && job.Latitude != nil && job.Longitude != nil {
		d := geo.DistanceKm(origin.lat, origin.lng, *job.Latitude, *job.Longitude)
		item.DistanceKm = &d
	}
	return item
}

func hitsToJobItems(hits []map[string]any, origin latLng, hasOrigin bool) []dto.JobSearchItem {
	items := make([]dto.JobSearchItem, 0, len(hits))
	for _, hit := range hits {
		item := dto.JobSearchItem{
			ID:          hitString(hit, "objectID"),
			Title:       hitString(hit, "title"),
			Description: hitString(hit, "description"),
			ServiceType: hitString(hit, "service_type"),
			Skills:      hitStrings(hit, "skills"),
			Town:        hitString(hit, "town"),
			Postcode:    hitString(hit, "postcode"),
			CitySlug:    hitString(hit, "city_slug"),
			Urgency:     hitString(hit, "urgency"),
			Budget:      hitFloatPtr(hit, "budget"),
			QuoteCount:  int(hitFloat(hit, "quote_count")),
		}
		if ts, err := time.Parse(time.RFC3339, hitString(hit, "created_at")); err == nil {
			item.CreatedAt = ts
		}
		if lat, lng := hitFloatPtr(hit, "lat"), hitFloatPtr(hit, "lng"); lat != nil && lng != nil {
			item.Latitude = lat
			item.Longitude = lng
			if hasOrigin {
				d := geo.DistanceKm(origin.lat, origin.lng, *lat, *lng)
				item.DistanceKm = &d
			}
		}
		items = append(items, item)
	}
	return items
}

func hitString(hit map[string]any, key string) string {
	if v, ok := hit[key].(string); ok {
		return v
	}
	return ""
}

func hitFloat(hit map[string]any, key string) float64 {
	switch v := hit[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func hitFloatPtr(hit map[string]any, key string) *float64 {
	switch v := hit[key].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	}
	return nil
}

func hitStrings(hit map[string]any, key string) []string {
	switch v := hit[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

var urgencyRank = map[string]int{
	string(models.UrgencyEmergency): 0,
	string(models.UrgencyUrgent):    1,
	string(models.UrgencySoon):      2,
	string(models.UrgencyFlexible):  3,
}

// sortJobItems is the one comparator table shared by the indexed path and
// the repository fallback.
func sortJobItems(items []dto.JobSearchItem, sortBy string) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		switch sortBy {
		case SortBudgetHigh:
			return derefBudget(a.Budget) > derefBudget(b.Budget)
		case SortBudgetLow:
			av, bv := a.Budget, b.Budget
			if av == nil {
				return false
			}
			if bv == nil {
				return true
			}
			return *av < *bv
		case SortDistance:
			if a.DistanceKm == nil {
				return false
			}
			if b.DistanceKm == nil {
				return true
			}
			return *a.DistanceKm < *b.DistanceKm
		case SortUrgency:
			ra, okA := urgencyRank[a.Urgency]
			rb, okB := urgencyRank[b.Urgency]
			if !okA {
				ra = len(urgencyRank)
			}
			if !okB {
				rb = len(urgencyRank)
			}
			if ra != rb {
				return ra < rb
			}
			return a.CreatedAt.After(b.CreatedAt)
		default: // newest
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
}

func derefBudget(b *float64) float64 {
	if b == nil {
		return 0
	}
	return *b
}

func pageSlice[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func paginate(page, pageSize, totalItems int) dto.Pagination {
	totalPages := 0
	if totalItems > 0 {
		totalPages = (totalItems + pageSize - 1) / pageSize
	}
	return dto.Pagination{
		Page:       page,
		Limit:      pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && totalItems > 0,
	}
}

// jobStats aggregates over the current page; Count reflects the whole
// result set.
func jobStats(items []dto.JobSearchItem, totalItems int) dto.SearchStats {
	stats := dto.SearchStats{Count: totalItems}
	var budgetSum float64
	var budgetCount int
	for i := range items {
		if items[i].Urgency == string(models.UrgencyEmergency) {
			stats.EmergencyCount++
		}
		if items[i].Budget != nil {
			budgetSum += *items[i].Budget
			budgetCount++
		}
	}
	if budgetCount > 0 {
		stats.AverageBudget = budgetSum / float64(budgetCount)
	}
	return stats
}

func (s *SearchServiceImpl) SearchTradespeople(ctx context.Context, req *dto.SearchTradespeopleRequest) *dto.SearchTradespeopleResponse {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}

	filters := dto.FilterSummary{
		Query:       req.Query,
		Location:    req.Location,
		RadiusKm:    req.RadiusKm,
		ServiceType: req.ServiceType,
		Skills:      req.Skills,
		MinBudget:   req.MinRate,
		MaxBudget:   req.MaxRate,
		SortBy:      req.SortBy,
	}
	filters.AnyFilterActive = req.Query != "" ||
		req.Location != "" ||
		req.ServiceType != "" ||
		len(req.Skills) > 0 ||
		req.MinRate != nil ||
		req.MaxRate != nil

	query := searchindex.Query{
		Text:        req.Query,
		Filters:     map[string]string{},
		Page:        req.Page,
		HitsPerPage: req.PageSize,
	}
	if req.ServiceType != "" {
		query.Filters["specialties"] = req.ServiceType
	} else if len(req.Skills) > 0 {
		query.Filters["specialties"] = req.Skills[0]
	}
	if req.MinRate != nil {
		query.NumericFilters = append(query.NumericFilters, searchindex.NumericFilter{Field: "hourly_rate", Op: ">=", Value: *req.MinRate})
	}
	if req.MaxRate != nil {
		query.NumericFilters = append(query.NumericFilters, searchindex.NumericFilter{Field: "hourly_rate", Op: "<=", Value: *req.MaxRate})
	}

	result, err := s.index.Search(ctx, s.tradespeopleIndex, query)
	if err != nil {
		logger.CtxWithError(ctx, "tradespeople index search failed, returning empty result", err)
		return &dto.SearchTradespeopleResponse{
			Items:      []dto.TradespersonSearchItem{},
			Pagination: paginate(req.Page, req.PageSize, 0),
			Filters:    filters,
		}
	}

	var items []dto.TradespersonSearchItem
	totalItems := result.Total

	if len(result.Hits) == 0 && !filters.AnyFilterActive {
		users, repoErr := s.userRepo.FindTradespeople()
		if repoErr != nil {
			logger.CtxWithError(ctx, "tradespeople search fallback scan failed", repoErr)
			users = nil
		}
		all := make([]dto.TradespersonSearchItem, 0, len(users))
		for i := range users {
			all = append(all, dto.TradespersonSearchItem{
				ID:           users[i].ID,
				Name:         users[i].Name,
				ServiceAreas: users[i].ServiceAreas,
				Specialties:  users[i].GetSpecialties(),
				Tier:         string(users[i].Tier()),
			})
		}
		sort.SliceStable(all, func(i, j int) bool { return all[i].Name < all[j].Name })
		totalItems = len(all)
		items = pageSlice(all, req.Page, req.PageSize)
	} else {
		items = make([]dto.TradespersonSearchItem, 0, len(result.Hits))
		for _, hit := range result.Hits {
			items = append(items, dto.TradespersonSearchItem{
				ID:           hitString(hit, "objectID"),
				Name:         hitString(hit, "name"),
				ServiceAreas: hitString(hit, "service_areas"),
				Specialties:  hitStrings(hit, "specialties"),
				Tier:         hitString(hit, "tier"),
			})
		}
	}

	return &dto.SearchTradespeopleResponse{
		Items:      items,
		Pagination: paginate(req.Page, req.PageSize, totalItems),
		Filters:    filters,
		Stats:      dto.SearchStats{Count: totalItems},
	}
}
