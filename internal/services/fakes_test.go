package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tradematch_backend/internal/geo"
	"tradematch_backend/internal/models"
	"tradematch_backend/internal/repositories"
	"tradematch_backend/pkg/apperrors"
)

// In-memory repository fakes. They mirror the store semantics the services
// rely on (soft-delete visibility, acceptance state re-check) without a
// database.

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (r *fakeUserRepo) FindByID(id string) (*models.User, error) {
	if user, ok := r.users[id]; ok {
		copy := *user
		return &copy, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copy := *user
			return &copy, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	}
	copy := *user
	r.users[user.ID] = &copy
	return nil
}

func (r *fakeUserRepo) Update(user *models.User) error {
	copy := *user
	r.users[user.ID] = &copy
	return nil
}

func (r *fakeUserRepo) FindAlertableTradespeople() ([]models.User, error) {
	var out []models.User
	for _, user := range r.users {
		if user.Role == models.UserRoleTradesperson && user.NewJobAlerts {
			out = append(out, *user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) FindTradespeople() ([]models.User, error) {
	var out []models.User
	for _, user := range r.users {
		if user.Role == models.UserRoleTradesperson {
			out = append(out, *user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) UpdateQuoteUsage(userID string, used int, resetDate time.Time, hasSubmitted bool) error {
	user, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.MonthlyQuotesUsed = used
	user.QuoteResetDate = &resetDate
	user.HasSubmittedQuote = hasSubmitted
	return nil
}

type fakeJobRepo struct {
	jobs map[string]*models.Job
	seq  int
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: map[string]*models.Job{}}
}

func (r *fakeJobRepo) Create(job *models.Job) error {
	r.seq++
	if job.ID == "" {
		job.ID = fmt.Sprintf("job-%d", r.seq)
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	copy := *job
	r.jobs[job.ID] = &copy
	return nil
}

func (r *fakeJobRepo) FindByID(id string) (*models.Job, error) {
	job, ok := r.jobs[id]
	if !ok || job.IsDeleted() {
		return nil, repositories.ErrJobNotFound
	}
	copy := *job
	return &copy, nil
}

func (r *fakeJobRepo) FindByIDIncludingDeleted(id string) (*models.Job, error) {
	if job, ok := r.jobs[id]; ok {
		copy := *job
		return &copy, nil
	}
	return nil, repositories.ErrJobNotFound
}

func (r *fakeJobRepo) UpdateFields(id string, fields map[string]interface{}) error {
	job, ok := r.jobs[id]
	if !ok || job.IsDeleted() {
		return nil
	}
	for key, value := range fields {
		switch key {
		case "status":
			job.Status = value.(models.JobStatus)
		case "completed_date":
			t := value.(time.Time)
			job.CompletedDate = &t
		case "title":
			job.Title = value.(string)
		case "description":
			job.Description = value.(string)
		}
	}
	job.UpdatedAt = time.Now()
	return nil
}

func (r *fakeJobRepo) UpdateStatus(id string, status models.JobStatus) error {
	if job, ok := r.jobs[id]; ok && !job.IsDeleted() {
		job.Status = status
		job.UpdatedAt = time.Now()
	}
	return nil
}

func (r *fakeJobRepo) IncrementQuoteCount(id string) error {
	if job, ok := r.jobs[id]; ok && !job.IsDeleted() {
		job.QuoteCount++
	}
	return nil
}

func (r *fakeJobRepo) AppendPayment(id string, payment models.Payment) error {
	job, ok := r.jobs[id]
	if !ok || job.IsDeleted() {
		return repositories.ErrJobNotFound
	}
	payments := append(job.GetPayments(), payment)
	raw, err := toJSON(payments)
	if err != nil {
		return err
	}
	job.Payments = raw
	return nil
}

func (r *fakeJobRepo) FindOpen() ([]models.Job, error) {
	var out []models.Job
	for _, job := range r.jobs {
		if job.Status == models.JobStatusOpen && !job.IsDeleted() {
			out = append(out, *job)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeJobRepo) FindRecentOpen(days int) ([]models.Job, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	var out []models.Job
	for _, job := range r.jobs {
		if job.Status == models.JobStatusOpen && !job.IsDeleted() && job.CreatedAt.After(cutoff) {
			out = append(out, *job)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeJobRepo) FindByCustomer(customerID string) ([]models.Job, error) {
	var out []models.Job
	for _, job := range r.jobs {
		if job.CustomerID == customerID && !job.IsDeleted() {
			out = append(out, *job)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeJobRepo) List(page, pageSize int) ([]models.Job, int64, error) {
	var all []models.Job
	for _, job := range r.jobs {
		if !job.IsDeleted() {
			all = append(all, *job)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	return pageSlice(all, page, pageSize), total, nil
}

func (r *fakeJobRepo) SoftDeleteCascade(jobID, adminID, reason string) (*models.Job, bool, error) {
	job, ok := r.jobs[jobID]
	if !ok {
		return nil, false, repositories.ErrJobNotFound
	}
	if job.IsDeleted() {
		copy := *job
		return &copy, true, nil
	}
	now := time.Now()
	job.DeletedAt = &now
	job.DeletedBy = &adminID
	job.DeletionReason = &reason
	copy := *job
	return &copy, false, nil
}

type fakeQuoteRepo struct {
	quotes  map[string]*models.Quote
	jobRepo *fakeJobRepo
	seq     int
}

func newFakeQuoteRepo(jobRepo *fakeJobRepo) *fakeQuoteRepo {
	return &fakeQuoteRepo{quotes: map[string]*models.Quote{}, jobRepo: jobRepo}
}

func (r *fakeQuoteRepo) Create(quote *models.Quote) error {
	r.seq++
	if quote.ID == "" {
		quote.ID = fmt.Sprintf("quote-%d", r.seq)
	}
	if quote.CreatedAt.IsZero() {
		quote.CreatedAt = time.Now()
	}
	copy := *quote
	r.quotes[quote.ID] = &copy
	return nil
}

func (r *fakeQuoteRepo) FindByID(id string) (*models.Quote, error) {
	quote, ok := r.quotes[id]
	if !ok || quote.IsDeleted() {
		return nil, repositories.ErrQuoteNotFound
	}
	copy := *quote
	return &copy, nil
}

func (r *fakeQuoteRepo) FindByJob(jobID string) ([]models.Quote, error) {
	var out []models.Quote
	for _, quote := range r.quotes {
		if quote.JobID == jobID && !quote.IsDeleted() {
			out = append(out, *quote)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeQuoteRepo) AcceptQuote(jobID, quoteID, customerID string) (*models.Job, *models.Quote, error) {
	job, ok := r.jobRepo.jobs[jobID]
	if !ok || job.IsDeleted() {
		return nil, nil, apperrors.ErrJobNotFound
	}
	quote, ok := r.quotes[quoteID]
	if !ok || quote.JobID != jobID || quote.IsDeleted() {
		return nil, nil, apperrors.ErrQuoteNotFound
	}
	if job.CustomerID != customerID {
		return nil, nil, apperrors.ErrNotJobOwner
	}
	if job.Status != models.JobStatusOpen && job.Status != models.JobStatusQuoted {
		return nil, nil, apperrors.ErrJobNotAcceptable
	}

	now := time.Now()
	job.Status = models.JobStatusAssigned
	job.TradespersonID = &quote.TradespersonID
	job.AcceptedQuoteID = &quote.ID
	job.UpdatedAt = now
	quote.Status = models.QuoteStatusAccepted
	quote.AcceptedDate = &now
	quote.UpdatedAt = now

	jobCopy := *job
	quoteCopy := *quote
	return &jobCopy, &quoteCopy, nil
}

type fakeNotificationRepo struct {
	notifications []*models.Notification
}

func (r *fakeNotificationRepo) Create(notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = fmt.Sprintf("notif-%d", len(r.notifications)+1)
	}
	notification.CreatedAt = time.Now()
	r.notifications = append(r.notifications, notification)
	return nil
}

func (r *fakeNotificationRepo) FindByUser(userID string, limit, offset int) ([]models.Notification, int64, error) {
	var out []models.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeNotificationRepo) MarkAsRead(userID, notificationID string) error {
	for _, n := range r.notifications {
		if n.ID == notificationID && n.UserID == userID {
			n.IsRead = true
			now := time.Now()
			n.ReadAt = &now
			return nil
		}
	}
	return repositories.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) MarkAllAsRead(userID string) error {
	for _, n := range r.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) CountUnread(userID string) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) byType(notificationType string) []*models.Notification {
	var out []*models.Notification
	for _, n := range r.notifications {
		if n.Type == notificationType {
			out = append(out, n)
		}
	}
	return out
}

type fakeCRMRepo struct {
	customers    []*models.CRMCustomer
	interactions []*models.CRMInteraction
}

func (r *fakeCRMRepo) FindCustomerByOwnerAndEmail(ownerID, email string) (*models.CRMCustomer, error) {
	for _, c := range r.customers {
		if c.OwnerID == ownerID && c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCRMRepo) FindCustomerByOwnerAndPhone(ownerID, phone string) (*models.CRMCustomer, error) {
	for _, c := range r.customers {
		if c.OwnerID == ownerID && c.Phone == phone {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCRMRepo) CreateCustomer(customer *models.CRMCustomer) error {
	if customer.ID == "" {
		customer.ID = fmt.Sprintf("crm-%d", len(r.customers)+1)
	}
	r.customers = append(r.customers, customer)
	return nil
}

func (r *fakeCRMRepo) CreateInteraction(interaction *models.CRMInteraction) error {
	r.interactions = append(r.interactions, interaction)
	return nil
}

// fakeEmailSender records every send.
type fakeEmailSender struct {
	sent []sentEmail
}

type sentEmail struct {
	kind string
	to   string
}

func (s *fakeEmailSender) record(kind, to string) error {
	s.sent = append(s.sent, sentEmail{kind: kind, to: to})
	return nil
}

func (s *fakeEmailSender) SendNewJobAlert(to, name, jobID, jobTitle, serviceType string) error {
	return s.record("new_job_alert", to)
}

func (s *fakeEmailSender) SendNewQuote(to, name, jobID, jobTitle, tradespersonName string) error {
	return s.record("new_quote", to)
}

func (s *fakeEmailSender) SendQuoteAccepted(to, name, jobID, jobTitle string) error {
	return s.record("quote_accepted", to)
}

func (s *fakeEmailSender) SendJobAccepted(to, name, jobID, jobTitle, tradespersonName string) error {
	return s.record("job_accepted", to)
}

func (s *fakeEmailSender) SendFinalPaymentDue(to, name, jobID, jobTitle string) error {
	return s.record("final_payment_due", to)
}

func (s *fakeEmailSender) byKind(kind string) []sentEmail {
	var out []sentEmail
	for _, e := range s.sent {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// fakeGeocoder serves canned results keyed by normalized postcode; a set
// err makes every lookup fail.
type fakeGeocoder struct {
	results map[string]*geo.Result
	err     error
	calls   int
}

func (g *fakeGeocoder) Resolve(_ context.Context, postcode string) (*geo.Result, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.results[geo.NormalizePostcode(postcode)], nil
}
