package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradematch_backend/internal/geo"
	"tradematch_backend/internal/models"
	"tradematch_backend/internal/searchindex"
	"tradematch_backend/internal/services/dto"
	"tradematch_backend/pkg/apperrors"
)

type jobFixture struct {
	svc           *JobServiceImpl
	users         *fakeUserRepo
	jobs          *fakeJobRepo
	notifications *fakeNotificationRepo
	emails        *fakeEmailSender
	crm           *fakeCRMRepo
	geocoder      *fakeGeocoder
	index         *searchindex.MemoryIndex
}

func newJobFixture(t *testing.T) *jobFixture {
	t.Helper()
	users := newFakeUserRepo()
	jobs := newFakeJobRepo()
	notifications := &fakeNotificationRepo{}
	emails := &fakeEmailSender{}
	crm := &fakeCRMRepo{}
	geocoder := &fakeGeocoder{results: map[string]*geo.Result{}}
	index := searchindex.NewMemoryIndex()

	svc := NewJobService(
		jobs, users, geocoder,
		NewMatchingService(users),
		NewNotificationService(notifications),
		emails,
		NewCRMService(crm),
		index,
		"jobs",
	).(*JobServiceImpl)

	return &jobFixture{
		svc:           svc,
		users:         users,
		jobs:          jobs,
		notifications: notifications,
		emails:        emails,
		crm:           crm,
		geocoder:      geocoder,
		index:         index,
	}
}

func createJobReq() *dto.CreateJobRequest {
	return &dto.CreateJobRequest{
		CustomerID:  "c1",
		Title:       "Boiler not heating water",
		Description: "Needs a plumber urgently",
		ServiceType: "Boiler Repair",
		Location:    dto.JobLocation{Postcode: "E7 9JH", Town: ""},
		Urgency:     string(models.UrgencyUrgent),
	}
}

func TestCreateJob_GeocodesAndDerivesCitySlug(t *testing.T) {
	f := newJobFixture(t)
	f.geocoder.results["E7 9JH"] = &geo.Result{
		Latitude:  51.5465,
		Longitude: 0.0252,
		District:  "Newham",
		Ward:      "Forest Gate North",
	}

	resp, err := f.svc.CreateJob(context.Background(), createJobReq())
	require.NoError(t, err)

	require.NotNil(t, resp.Location.Latitude)
	assert.InDelta(t, 51.5465, *resp.Location.Latitude, 0.0001)
	assert.Equal(t, "newham", resp.CitySlug, "district slug wins when town and explicit slug are empty")
	assert.Equal(t, string(models.JobStatusOpen), resp.Status)
	assert.Equal(t, 0, resp.QuoteCount)

	stored := f.jobs.jobs[resp.ID]
	assert.Contains(t, stored.GetKeywords(), "boiler")
}

func TestCreateJob_CitySlugPreferenceChain(t *testing.T) {
	f := newJobFixture(t)
	f.geocoder.results["E7 9JH"] = &geo.Result{District: "Newham", Ward: "Forest Gate North"}

	// Explicit slug beats everything.
	req := createJobReq()
	req.CitySlug = "East London"
	resp, err := f.svc.CreateJob(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "east-london", resp.CitySlug)

	// Town beats geocoded district.
	req = createJobReq()
	req.Location.Town = "Forest Gate"
	resp, err = f.svc.CreateJob(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "forest-gate", resp.CitySlug)

	// Ward is the last resort.
	f.geocoder.results["E7 9JH"] = &geo.Result{Ward: "Forest Gate North"}
	resp, err = f.svc.CreateJob(context.Background(), createJobReq())
	require.NoError(t, err)
	assert.Equal(t, "forest-gate-north", resp.CitySlug)
}

func TestCreateJob_GeocodeFailureSwallowed(t *testing.T) {
	f := newJobFixture(t)
	f.geocoder.err = errors.New("geocoder down")

	resp, err := f.svc.CreateJob(context.Background(), createJobReq())
	require.NoError(t, err, "geocoding failure must never fail creation")
	assert.Nil(t, resp.Location.Latitude)
	assert.Equal(t, "", resp.CitySlug)
}

func TestCreateJob_ProvidedCoordinatesSkipGeocoding(t *testing.T) {
	f := newJobFixture(t)
	req := createJobReq()
	req.Location.Latitude = fptr(51.5)
	req.Location.Longitude = fptr(0.02)

	_, err := f.svc.CreateJob(context.Background(), req)
	require.NoError(t, err)
	assert.Zero(t, f.geocoder.calls)
}

func TestCreateJob_FansOutAlertsToMatches(t *testing.T) {
	f := newJobFixture(t)
	require.NoError(t, f.users.Create(tradesperson("t1", "t1@example.com", models.TierBasic, "east london", []string{"boiler repair"})))
	require.NoError(t, f.users.Create(tradesperson("t2", "", models.TierPro, "east london", []string{"boiler repair"})))
	require.NoError(t, f.users.Create(tradesperson("t3", "t3@example.com", models.TierBasic, "manchester", []string{"boiler repair"})))

	req := createJobReq()
	req.CitySlug = "london"
	_, err := f.svc.CreateJob(context.Background(), req)
	require.NoError(t, err)

	matchNotices := f.notifications.byType(NotificationNewJobMatch)
	require.Len(t, matchNotices, 2, "only area+specialty matches are alerted")

	// Email goes to every match with an address, regardless of tier.
	alertEmails := f.emails.byKind("new_job_alert")
	require.Len(t, alertEmails, 1)
	assert.Equal(t, "t1@example.com", alertEmails[0].to)
}

func TestCreateJob_IndexesDocument(t *testing.T) {
	f := newJobFixture(t)
	resp, err := f.svc.CreateJob(context.Background(), createJobReq())
	require.NoError(t, err)

	docs, err := f.index.BrowseAll(context.Background(), "jobs")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, resp.ID, docs[0]["objectID"])
}

func TestGetJob_SoftDeletedIsNotFound(t *testing.T) {
	f := newJobFixture(t)
	resp, err := f.svc.CreateJob(context.Background(), createJobReq())
	require.NoError(t, err)

	require.NoError(t, f.svc.AdminDeleteJob(context.Background(), resp.ID, "admin", "spam"))

	_, err = f.svc.GetJob(resp.ID)
	assert.ErrorIs(t, err, apperrors.ErrJobNotFound)
}

func TestAdminDeleteJob_NotifiesOnceAndIsIdempotent(t *testing.T) {
	f := newJobFixture(t)
	customer := &models.User{Email: "c1@example.com", Role: models.UserRoleCustomer}
	customer.ID = "c1"
	require.NoError(t, f.users.Create(customer))

	resp, err := f.svc.CreateJob(context.Background(), createJobReq())
	require.NoError(t, err)

	require.NoError(t, f.svc.AdminDeleteJob(context.Background(), resp.ID, "admin", "spam"))
	require.Len(t, f.notifications.byType(NotificationJobRemoved), 1)

	// Second run is a silent no-op: no duplicate notices.
	require.NoError(t, f.svc.AdminDeleteJob(context.Background(), resp.ID, "admin", "spam"))
	assert.Len(t, f.notifications.byType(NotificationJobRemoved), 1)
}

func TestAdminDeleteJob_ExcludedFromListings(t *testing.T) {
	f := newJobFixture(t)
	resp, err := f.svc.CreateJob(context.Background(), createJobReq())
	require.NoError(t, err)
	require.NoError(t, f.svc.AdminDeleteJob(context.Background(), resp.ID, "admin", "dup"))

	open, err := f.svc.GetOpenJobs()
	require.NoError(t, err)
	assert.Empty(t, open)

	recent, err := f.svc.GetRecentOpenJobs(7)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestMarkJobComplete_RequiresAssignedTradesperson(t *testing.T) {
	f := newJobFixture(t)
	resp, err := f.svc.CreateJob(context.Background(), createJobReq())
	require.NoError(t, err)

	_, err = f.svc.MarkJobComplete(context.Background(), resp.ID, "t1")
	assert.ErrorIs(t, err, apperrors.ErrNotAssignedTradesperson)
}

func TestMarkJobComplete_NotifiesCustomerAndSyncsCRM(t *testing.T) {
	f := newJobFixture(t)
	customer := &models.User{Email: "c1@example.com", Role: models.UserRoleCustomer, Name: "Casey"}
	customer.ID = "c1"
	require.NoError(t, f.users.Create(customer))
	require.NoError(t, f.users.Create(tradesperson("t1", "t1@example.com", models.TierBusiness, "east london", []string{"boiler repair"})))

	resp, err := f.svc.CreateJob(context.Background(), createJobReq())
	require.NoError(t, err)

	stored := f.jobs.jobs[resp.ID]
	stored.Status = models.JobStatusAssigned
	tpID := "t1"
	stored.TradespersonID = &tpID

	completed, err := f.svc.MarkJobComplete(context.Background(), resp.ID, "t1")
	require.NoError(t, err)
	assert.Equal(t, string(models.JobStatusCompleted), completed.Status)
	assert.NotNil(t, completed.CompletedDate)

	require.Len(t, f.notifications.byType(NotificationFinalPaymentDue), 1)
	assert.Len(t, f.emails.byKind("final_payment_due"), 1)

	require.Len(t, f.crm.customers, 1)
	assert.Equal(t, "t1", f.crm.customers[0].OwnerID)
	require.Len(t, f.crm.interactions, 1)
	assert.Contains(t, f.crm.interactions[0].Note, "Completed job")
}

func TestRecordPayment_AppendsToJob(t *testing.T) {
	f := newJobFixture(t)
	resp, err := f.svc.CreateJob(context.Background(), createJobReq())
	require.NoError(t, err)

	updated, err := f.svc.RecordPayment(resp.ID, "c1", &dto.RecordPaymentRequest{
		Type:      string(models.PaymentTypeDeposit),
		Amount:    50,
		Reference: "pay_123",
	})
	require.NoError(t, err)
	require.Len(t, updated.Payments, 1)
	assert.Equal(t, models.PaymentTypeDeposit, updated.Payments[0].Type)

	_, err = f.svc.RecordPayment(resp.ID, "someone-else", &dto.RecordPaymentRequest{
		Type: string(models.PaymentTypeFinal), Amount: 10, Reference: "x",
	})
	assert.ErrorIs(t, err, apperrors.ErrNotJobOwner)
}

func TestCancelJob_OwnerWithdrawsOpenJob(t *testing.T) {
	f := newJobFixture(t)
	resp, err := f.svc.CreateJob(context.Background(), createJobReq())
	require.NoError(t, err)

	cancelled, err := f.svc.CancelJob(context.Background(), resp.ID, "c1")
	require.NoError(t, err)
	assert.Equal(t, string(models.JobStatusCancelled), cancelled.Status)

	_, err = f.svc.CancelJob(context.Background(), resp.ID, "someone-else")
	assert.ErrorIs(t, err, apperrors.ErrNotJobOwner)
}

func TestCancelJob_AssignedJobStaysPut(t *testing.T) {
	f := newJobFixture(t)
	resp, err := f.svc.CreateJob(context.Background(), createJobReq())
	require.NoError(t, err)
	require.NoError(t, f.jobs.UpdateStatus(resp.ID, models.JobStatusAssigned))

	_, err = f.svc.CancelJob(context.Background(), resp.ID, "c1")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidStatus, appErr.Code)
}
