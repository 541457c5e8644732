package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradematch_backend/internal/models"
	"tradematch_backend/internal/searchindex"
	"tradematch_backend/internal/services/dto"
)

type failingIndex struct{}

func (failingIndex) Search(context.Context, string, searchindex.Query) (*searchindex.Result, error) {
	return nil, errors.New("index unavailable")
}
func (failingIndex) SaveObject(context.Context, string, map[string]any) error {
	return errors.New("index unavailable")
}
func (failingIndex) DeleteObject(context.Context, string, string) error {
	return errors.New("index unavailable")
}
func (failingIndex) BrowseAll(context.Context, string) ([]map[string]any, error) {
	return nil, errors.New("index unavailable")
}

func searchFixture(index searchindex.Index) (*SearchServiceImpl, *fakeJobRepo, *fakeUserRepo) {
	jobs := newFakeJobRepo()
	users := newFakeUserRepo()
	svc := NewSearchService(jobs, users, index, "jobs", "tradespeople").(*SearchServiceImpl)
	return svc, jobs, users
}

func openJob(id, title string, budget *float64, urgency models.JobUrgency, createdAt time.Time) *models.Job {
	job := &models.Job{
		Title:       title,
		Description: "Some work",
		ServiceType: "Plumbing",
		Town:        "Romford",
		Postcode:    "RM1 1AA",
		Urgency:     urgency,
		Budget:      budget,
		Status:      models.JobStatusOpen,
	}
	job.ID = id
	job.CreatedAt = createdAt
	return job
}

func fptr(v float64) *float64 { return &v }

func TestSearchJobs_BareQueryFallbackMatchesListing(t *testing.T) {
	svc, jobs, _ := searchFixture(searchindex.NewMemoryIndex())

	base := time.Now().Add(-time.Hour)
	require.NoError(t, jobs.Create(openJob("j1", "Fix tap", fptr(80), models.UrgencyFlexible, base)))
	require.NoError(t, jobs.Create(openJob("j2", "Fit bathroom", fptr(900), models.UrgencySoon, base.Add(time.Minute))))
	require.NoError(t, jobs.Create(openJob("j3", "Unblock drain", nil, models.UrgencyUrgent, base.Add(2*time.Minute))))

	resp := svc.SearchJobs(context.Background(), &dto.SearchJobsRequest{})

	listing, err := jobs.FindOpen()
	require.NoError(t, err)
	require.Len(t, resp.Items, len(listing))
	for i := range listing {
		assert.Equal(t, listing[i].ID, resp.Items[i].ID, "fallback order must match listing order")
	}
	assert.Equal(t, 3, resp.Pagination.TotalItems)
	assert.False(t, resp.Filters.AnyFilterActive)
}

func TestSearchJobs_SoftDeletedExcludedFromFallback(t *testing.T) {
	svc, jobs, _ := searchFixture(searchindex.NewMemoryIndex())
	require.NoError(t, jobs.Create(openJob("j1", "Fix tap", nil, models.UrgencyFlexible, time.Now())))
	_, _, err := jobs.SoftDeleteCascade("j1", "admin", "spam")
	require.NoError(t, err)

	resp := svc.SearchJobs(context.Background(), &dto.SearchJobsRequest{})
	assert.Empty(t, resp.Items)
}

func TestSearchJobs_FilteredQuerySkipsFallback(t *testing.T) {
	svc, jobs, _ := searchFixture(searchindex.NewMemoryIndex())
	require.NoError(t, jobs.Create(openJob("j1", "Fix tap", fptr(80), models.UrgencyFlexible, time.Now())))

	// The index is empty and a filter is active: the empty result is
	// returned as-is, no repository scan.
	resp := svc.SearchJobs(context.Background(), &dto.SearchJobsRequest{ServiceType: "Plumbing"})
	assert.Empty(t, resp.Items)
	assert.Equal(t, 0, resp.Pagination.TotalItems)
	assert.True(t, resp.Filters.AnyFilterActive)
}

func TestSearchJobs_IndexedPath(t *testing.T) {
	index := searchindex.NewMemoryIndex()
	svc, _, _ := searchFixture(index)

	job := openJob("j1", "Fix leaking tap", fptr(80), models.UrgencyFlexible, time.Now())
	require.NoError(t, index.SaveObject(context.Background(), "jobs", JobIndexObject(job)))

	resp := svc.SearchJobs(context.Background(), &dto.SearchJobsRequest{Query: "leaking"})
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "j1", resp.Items[0].ID)
	assert.Equal(t, "Fix leaking tap", resp.Items[0].Title)
	require.NotNil(t, resp.Items[0].Budget)
	assert.Equal(t, 80.0, *resp.Items[0].Budget)
}

func TestSearchJobs_GeoFallbackRetriesWithoutRadius(t *testing.T) {
	index := searchindex.NewMemoryIndex()
	svc, _, _ := searchFixture(index)

	// Central London job, search origin in Manchester with a tight radius.
	job := openJob("j1", "Fix tap", nil, models.UrgencyFlexible, time.Now())
	job.Latitude = fptr(51.5074)
	job.Longitude = fptr(-0.1278)
	require.NoError(t, index.SaveObject(context.Background(), "jobs", JobIndexObject(job)))

	resp := svc.SearchJobs(context.Background(), &dto.SearchJobsRequest{
		Location: "53.4808,-2.2426",
		RadiusKm: 5,
	})
	require.Len(t, resp.Items, 1, "zero hits inside the radius retries without the geo constraint")
	assert.Equal(t, "j1", resp.Items[0].ID)
	require.NotNil(t, resp.Items[0].DistanceKm)
	assert.Greater(t, *resp.Items[0].DistanceKm, 5.0)
}

func TestSearchJobs_IndexErrorReturnsEmptyResult(t *testing.T) {
	svc, jobs, _ := searchFixture(failingIndex{})
	require.NoError(t, jobs.Create(openJob("j1", "Fix tap", nil, models.UrgencyFlexible, time.Now())))

	resp := svc.SearchJobs(context.Background(), &dto.SearchJobsRequest{Query: "tap", Page: 2, PageSize: 10})
	require.NotNil(t, resp)
	assert.Empty(t, resp.Items)
	assert.Equal(t, 2, resp.Pagination.Page)
	assert.Equal(t, 10, resp.Pagination.Limit)
	assert.Equal(t, 0, resp.Pagination.TotalItems)
	assert.Equal(t, "tap", resp.Filters.Query)
}

func TestSearchJobs_Comparators(t *testing.T) {
	base := time.Now().Add(-time.Hour)
	build := func() (*SearchServiceImpl, *fakeJobRepo) {
		svc, jobs, _ := searchFixture(searchindex.NewMemoryIndex())
		require.NoError(t, jobs.Create(openJob("cheap", "a", fptr(50), models.UrgencyFlexible, base)))
		require.NoError(t, jobs.Create(openJob("dear", "b", fptr(500), models.UrgencySoon, base.Add(time.Minute))))
		require.NoError(t, jobs.Create(openJob("urgent", "c", fptr(200), models.UrgencyEmergency, base.Add(2*time.Minute))))
		return svc, jobs
	}

	svc, _ := build()
	resp := svc.SearchJobs(context.Background(), &dto.SearchJobsRequest{SortBy: SortBudgetHigh})
	require.Len(t, resp.Items, 3)
	assert.Equal(t, "dear", resp.Items[0].ID)
	assert.Equal(t, "urgent", resp.Items[1].ID)
	assert.Equal(t, "cheap", resp.Items[2].ID)

	svc, _ = build()
	resp = svc.SearchJobs(context.Background(), &dto.SearchJobsRequest{SortBy: SortBudgetLow})
	assert.Equal(t, "cheap", resp.Items[0].ID)

	svc, _ = build()
	resp = svc.SearchJobs(context.Background(), &dto.SearchJobsRequest{SortBy: SortUrgency})
	assert.Equal(t, "urgent", resp.Items[0].ID)

	svc, _ = build()
	resp = svc.SearchJobs(context.Background(), &dto.SearchJobsRequest{SortBy: SortNewest})
	assert.Equal(t, "urgent", resp.Items[0].ID, "newest job first")
	assert.Equal(t, "cheap", resp.Items[2].ID)
}

func TestSearchJobs_PaginationMath(t *testing.T) {
	svc, jobs, _ := searchFixture(searchindex.NewMemoryIndex())
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, jobs.Create(openJob("", "job", nil, models.UrgencyFlexible, base.Add(time.Duration(i)*time.Minute))))
	}

	resp := svc.SearchJobs(context.Background(), &dto.SearchJobsRequest{Page: 2, PageSize: 2})
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, 5, resp.Pagination.TotalItems)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.True(t, resp.Pagination.HasNext)
	assert.True(t, resp.Pagination.HasPrev)

	last := svc.SearchJobs(context.Background(), &dto.SearchJobsRequest{Page: 3, PageSize: 2})
	assert.Len(t, last.Items, 1)
	assert.False(t, last.Pagination.HasNext)
}

func TestSearchJobs_Stats(t *testing.T) {
	svc, jobs, _ := searchFixture(searchindex.NewMemoryIndex())
	now := time.Now()
	require.NoError(t, jobs.Create(openJob("j1", "a", fptr(100), models.UrgencyEmergency, now)))
	require.NoError(t, jobs.Create(openJob("j2", "b", fptr(300), models.UrgencyFlexible, now)))
	require.NoError(t, jobs.Create(openJob("j3", "c", nil, models.UrgencyFlexible, now)))

	resp := svc.SearchJobs(context.Background(), &dto.SearchJobsRequest{})
	assert.Equal(t, 3, resp.Stats.Count)
	assert.Equal(t, 1, resp.Stats.EmergencyCount)
	assert.Equal(t, 200.0, resp.Stats.AverageBudget)
}

func TestSearchTradespeople_FallbackAndIndexedPath(t *testing.T) {
	index := searchindex.NewMemoryIndex()
	svc, _, users := searchFixture(index)

	require.NoError(t, users.Create(tradesperson("t1", "t1@example.com", models.TierPro, "east london", []string{"plumbing"})))
	require.NoError(t, users.Create(tradesperson("t2", "t2@example.com", models.TierBasic, "romford", []string{"roofing"})))

	// Empty index, no filters: repository fallback lists everyone.
	resp := svc.SearchTradespeople(context.Background(), &dto.SearchTradespeopleRequest{})
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, 2, resp.Stats.Count)

	// Indexed path with a specialty facet.
	tp, err := users.FindByID("t1")
	require.NoError(t, err)
	require.NoError(t, index.SaveObject(context.Background(), "tradespeople", TradespersonIndexObject(tp)))

	resp = svc.SearchTradespeople(context.Background(), &dto.SearchTradespeopleRequest{ServiceType: "plumbing"})
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "t1", resp.Items[0].ID)
	assert.Equal(t, string(models.TierPro), resp.Items[0].Tier)
}

func TestSearchTradespeople_FilteredEmptySkipsFallback(t *testing.T) {
	svc, _, users := searchFixture(searchindex.NewMemoryIndex())
	require.NoError(t, users.Create(tradesperson("t1", "", models.TierBasic, "east london", []string{"plumbing"})))

	resp := svc.SearchTradespeople(context.Background(), &dto.SearchTradespeopleRequest{ServiceType: "roofing"})
	assert.Empty(t, resp.Items)
}
