package services

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"tradematch_backend/internal/geo"
	"tradematch_backend/internal/logger"
	"tradematch_backend/internal/models"
	"tradematch_backend/internal/pkg/email"
	"tradematch_backend/internal/repositories"
	"tradematch_backend/internal/searchindex"
	"tradematch_backend/internal/services/dto"
	"tradematch_backend/internal/utils"
	"tradematch_backend/pkg/apperrors"
)

type JobService interface {
	CreateJob(ctx context.Context, req *dto.CreateJobRequest) (*dto.JobResponse, error)
	GetJob(id string) (*dto.JobResponse, error)
	UpdateJob(ctx context.Context, jobID, customerID string, req *dto.UpdateJobRequest) (*dto.JobResponse, error)
	UpdateJobStatus(jobID string, status models.JobStatus) error
	CancelJob(ctx context.Context, jobID, customerID string) (*dto.JobResponse, error)
	MarkJobComplete(ctx context.Context, jobID, tradespersonID string) (*dto.JobResponse, error)
	RecordPayment(jobID, customerID string, req *dto.RecordPaymentRequest) (*dto.JobResponse, error)
	AdminDeleteJob(ctx context.Context, jobID, adminID, reason string) error

	GetOpenJobs() ([]*dto.JobResponse, error)
	GetRecentOpenJobs(days int) ([]*dto.JobResponse, error)
	GetJobsByCustomer(customerID string) ([]*dto.JobResponse, error)
	ListJobs(page, pageSize int) ([]*dto.JobResponse, int64, error)
}

type JobServiceImpl struct {
	jobRepo       repositories.JobRepository
	userRepo      repositories.UserRepository
	geocoder      geo.Geocoder
	matching      MatchingService
	notifications NotificationService
	emailSender   email.Sender
	crm           CRMService
	index         searchindex.Index
	jobsIndex     string
}

func NewJobService(
	jobRepo repositories.JobRepository,
	userRepo repositories.UserRepository,
	geocoder geo.Geocoder,
	matching MatchingService,
	notifications NotificationService,
	emailSender email.Sender,
	crm CRMService,
	index searchindex.Index,
	jobsIndex string,
) JobService {
	return &JobServiceImpl{
		jobRepo:       jobRepo,
		userRepo:      userRepo,
		geocoder:      geocoder,
		matching:      matching,
		notifications: notifications,
		emailSender:   emailSender,
		crm:           crm,
		index:         index,
		jobsIndex:     jobsIndex,
	}
}

// CreateJob persists the job and fans alerts out to matched tradespeople.
// Geocoding, indexing and the fan-out are soft: a failed collaborator is
// logged and the creation still succeeds. Only the store write is hard.
func (s *JobServiceImpl) CreateJob(ctx context.Context, req *dto.CreateJobRequest) (*dto.JobResponse, error) {
	postcode := geo.NormalizePostcode(req.Location.Postcode)

	latitude := req.Location.Latitude
	longitude := req.Location.Longitude
	var district, ward string

	if postcode != "" && (latitude == nil || longitude == nil) {
		result, err := s.geocoder.Resolve(ctx, postcode)
		if err != nil {
			logger.CtxWithError(ctx, "geocoding failed, creating job without coordinates", err, "postcode", postcode)
		} else if result != nil {
			latitude = &result.Latitude
			longitude = &result.Longitude
			district = result.District
			ward = result.Ward
		}
	}

	citySlug := utils.FirstNonEmptySlug(req.CitySlug, req.Location.Town, district, ward)

	keywordSources := append([]string{req.Title, req.Description, req.ServiceType, req.Location.Town, postcode}, req.Skills...)
	keywords := utils.ExtractKeywords(keywordSources...)

	urgency := models.JobUrgency(req.Urgency)
	if urgency == "" {
		urgency = models.UrgencyFlexible
	}

	skillsJSON, err := toJSON(req.Skills)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	keywordsJSON, err := toJSON(keywords)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	job := &models.Job{
		CustomerID:    req.CustomerID,
		Title:         req.Title,
		Description:   req.Description,
		ServiceType:   req.ServiceType,
		Skills:        skillsJSON,
		Keywords:      keywordsJSON,
		Postcode:      postcode,
		Town:          req.Location.Town,
		Address:       req.Location.Address,
		Latitude:      latitude,
		Longitude:     longitude,
		CitySlug:      citySlug,
		Urgency:       urgency,
		Budget:        req.Budget,
		Status:        models.JobStatusOpen,
		QuoteCount:    0,
		ScheduledDate: req.ScheduledDate,
	}

	if err := s.jobRepo.Create(job); err != nil {
		logger.CtxWithError(ctx, "job create failed", err)
		return nil, apperrors.InternalError(err)
	}

	s.indexJob(ctx, job)
	s.alertMatchedTradespeople(ctx, job)

	return dto.NewJobResponse(job), nil
}

// alertMatchedTradespeople runs the matching engine and notifies every
// match: in-app always, email when an address is on file. Awaited so tests
// observe the fan-out, but never allowed to fail the create.
func (s *JobServiceImpl) alertMatchedTradespeople(ctx context.Context, job *models.Job) {
	matches, err := s.matching.MatchTradespeople(ctx, job)
	if err != nil {
		logger.CtxWithError(ctx, "matching failed, skipping job alerts", err, "job_id", job.ID)
		return
	}

	for _, tradesperson := range matches.All() {
		if err := s.notifications.NotifyNewJobMatch(tradesperson.ID, job); err != nil {
			logger.CtxWithError(ctx, "job match notification failed", err,
				"job_id", job.ID, "tradesperson_id", tradesperson.ID)
		}
		if tradesperson.Email == "" {
			continue
		}
		if err := s.emailSender.SendNewJobAlert(tradesperson.Email, tradesperson.Name, job.ID, job.Title, job.ServiceType); err != nil {
			logger.CtxWithError(ctx, "job alert email failed", err,
				"job_id", job.ID, "tradesperson_id", tradesperson.ID)
		}
	}
}

func (s *JobServiceImpl) GetJob(id string) (*dto.JobResponse, error) {
	job, err := s.jobRepo.FindByID(id)
	if err != nil {
		if err == repositories.ErrJobNotFound {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return dto.NewJobResponse(job), nil
}

// UpdateJob applies partial-update semantics: only the keys the caller sent
// reach the store. Location changes trigger a re-geocode only when the new
// location carries no coordinates of its own.
func (s *JobServiceImpl) UpdateJob(ctx context.Context, jobID, customerID string, req *dto.UpdateJobRequest) (*dto.JobResponse, error) {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		if err == repositories.ErrJobNotFound {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if job.CustomerID != customerID {
		return nil, apperrors.ErrNotJobOwner
	}

	fields := map[string]interface{}{}

	if req.Title != nil {
		fields["title"] = *req.Title
		job.Title = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
		job.Description = *req.Description
	}
	if req.ServiceType != nil {
		fields["service_type"] = *req.ServiceType
		job.ServiceType = *req.ServiceType
	}
	if req.Skills != nil {
		skillsJSON, err := toJSON(req.Skills)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		fields["skills"] = skillsJSON
		job.Skills = skillsJSON
	}
	if req.Urgency != nil {
		fields["urgency"] = models.JobUrgency(*req.Urgency)
		job.Urgency = models.JobUrgency(*req.Urgency)
	}
	if req.Budget != nil {
		fields["budget"] = *req.Budget
		job.Budget = req.Budget
	}
	if req.ScheduledDate != nil {
		fields["scheduled_date"] = *req.ScheduledDate
		job.ScheduledDate = req.ScheduledDate
	}

	var district, ward string
	if req.Location != nil {
		postcode := geo.NormalizePostcode(req.Location.Postcode)
		latitude := req.Location.Latitude
		longitude := req.Location.Longitude

		if postcode != "" && (latitude == nil || longitude == nil) {
			result, err := s.geocoder.Resolve(ctx, postcode)
			if err != nil {
				logger.CtxWithError(ctx, "geocoding failed, updating job without coordinates", err, "postcode", postcode)
			} else if result != nil {
				latitude = &result.Latitude
				longitude = &result.Longitude
				district = result.District
				ward = result.Ward
			}
		}

		fields["postcode"] = postcode
		fields["town"] = req.Location.Town
		fields["address"] = req.Location.Address
		fields["latitude"] = latitude
		fields["longitude"] = longitude
		job.Postcode = postcode
		job.Town = req.Location.Town
		job.Address = req.Location.Address
		job.Latitude = latitude
		job.Longitude = longitude
	}

	if req.CitySlug != nil || req.Location != nil {
		var explicit string
		if req.CitySlug != nil {
			explicit = *req.CitySlug
		}
		citySlug := utils.FirstNonEmptySlug(explicit, job.Town, district, ward)
		if citySlug != "" || req.CitySlug != nil {
			fields["city_slug"] = citySlug
			job.CitySlug = citySlug
		}
	}

	if req.Title != nil || req.Description != nil || req.ServiceType != nil || req.Skills != nil || req.Location != nil {
		keywordSources := append([]string{job.Title, job.Description, job.ServiceType, job.Town, job.Postcode}, job.GetSkills()...)
		keywordsJSON, err := toJSON(utils.ExtractKeywords(keywordSources...))
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		fields["keywords"] = keywordsJSON
		job.Keywords = keywordsJSON
	}

	if len(fields) == 0 {
		return dto.NewJobResponse(job), nil
	}

	if err := s.jobRepo.UpdateFields(jobID, fields); err != nil {
		logger.CtxWithError(ctx, "job update failed", err, "job_id", jobID)
		return nil, apperrors.InternalError(err)
	}
	job.UpdatedAt = time.Now()

	s.indexJob(ctx, job)

	return dto.NewJobResponse(job), nil
}

func (s *JobServiceImpl) UpdateJobStatus(jobID string, status models.JobStatus) error {
	if err := s.jobRepo.UpdateStatus(jobID, status); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// CancelJob lets the posting customer withdraw a job before a quote is
// accepted. Assigned and completed jobs stay put.
func (s *JobServiceImpl) CancelJob(ctx context.Context, jobID, customerID string) (*dto.JobResponse, error) {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		if err == repositories.ErrJobNotFound {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if job.CustomerID != customerID {
		return nil, apperrors.ErrNotJobOwner
	}
	if job.Status != models.JobStatusOpen && job.Status != models.JobStatusQuoted {
		return nil, apperrors.ErrStateConflict("jobs", "Only open or quoted jobs can be cancelled")
	}

	if err := s.UpdateJobStatus(jobID, models.JobStatusCancelled); err != nil {
		return nil, err
	}
	job.Status = models.JobStatusCancelled
	job.UpdatedAt = time.Now()

	s.indexJob(ctx, job)

	return dto.NewJobResponse(job), nil
}

// MarkJobComplete moves an assigned job to completed. Only the assigned
// tradesperson may call it. The customer gets a final-payment-due
// notification and email; business-tier tradespeople get a CRM entry.
func (s *JobServiceImpl) MarkJobComplete(ctx context.Context, jobID, tradespersonID string) (*dto.JobResponse, error) {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		if err == repositories.ErrJobNotFound {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if job.TradespersonID == nil || *job.TradespersonID != tradespersonID {
		return nil, apperrors.ErrNotAssignedTradesperson
	}
	if job.Status != models.JobStatusAssigned {
		return nil, apperrors.ErrStateConflict("jobs", "Only assigned jobs can be marked complete")
	}

	now := time.Now()
	if err := s.jobRepo.UpdateFields(jobID, map[string]interface{}{
		"status":         models.JobStatusCompleted,
		"completed_date": now,
	}); err != nil {
		logger.CtxWithError(ctx, "job completion failed", err, "job_id", jobID)
		return nil, apperrors.InternalError(err)
	}
	job.Status = models.JobStatusCompleted
	job.CompletedDate = &now

	customer, err := s.userRepo.FindByID(job.CustomerID)
	if err != nil {
		logger.CtxWithError(ctx, "customer lookup failed, skipping completion notices", err, "job_id", jobID)
	} else {
		if err := s.notifications.NotifyFinalPaymentDue(customer.ID, job); err != nil {
			logger.CtxWithError(ctx, "final payment notification failed", err, "job_id", jobID)
		}
		if customer.Email != "" {
			if err := s.emailSender.SendFinalPaymentDue(customer.Email, customer.Name, job.ID, job.Title); err != nil {
				logger.CtxWithError(ctx, "final payment email failed", err, "job_id", jobID)
			}
		}
	}

	s.syncCRMAfterCompletion(ctx, job, tradespersonID, customer)
	s.indexJob(ctx, job)

	return dto.NewJobResponse(job), nil
}

func (s *JobServiceImpl) syncCRMAfterCompletion(ctx context.Context, job *models.Job, tradespersonID string, customer *models.User) {
	if customer == nil {
		return
	}

	tradesperson, err := s.userRepo.FindByID(tradespersonID)
	if err != nil {
		logger.CtxWithError(ctx, "tradesperson lookup failed, skipping CRM sync", err, "job_id", job.ID)
		return
	}
	if tradesperson.Tier() != models.TierBusiness {
		return
	}

	crmCustomer, err := s.crm.FindOrCreateCustomer(tradespersonID, CRMContact{
		Name:  customer.Name,
		Email: customer.Email,
		Phone: customer.Phone,
	})
	if err != nil {
		logger.CtxWithError(ctx, "CRM customer sync failed", err, "job_id", job.ID)
		return
	}
	if err := s.crm.RecordInteraction(tradespersonID, crmCustomer.ID, "Completed job: "+job.Title); err != nil {
		logger.CtxWithError(ctx, "CRM interaction record failed", err, "job_id", job.ID)
	}
}

func (s *JobServiceImpl) RecordPayment(jobID, customerID string, req *dto.RecordPaymentRequest) (*dto.JobResponse, error) {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		if err == repositories.ErrJobNotFound {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if job.CustomerID != customerID {
		return nil, apperrors.ErrNotJobOwner
	}

	payment := models.Payment{
		Type:      models.PaymentType(req.Type),
		Amount:    req.Amount,
		Reference: req.Reference,
		PaidAt:    time.Now(),
	}
	if err := s.jobRepo.AppendPayment(jobID, payment); err != nil {
		return nil, apperrors.InternalError(err)
	}

	updated, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewJobResponse(updated), nil
}

// AdminDeleteJob soft-deletes the job with its quotes and conversations.
// The second call on the same id is a silent no-op; removal notices go out
// on the first deletion only.
func (s *JobServiceImpl) AdminDeleteJob(ctx context.Context, jobID, adminID, reason string) error {
	job, alreadyDeleted, err := s.jobRepo.SoftDeleteCascade(jobID, adminID, reason)
	if err != nil {
		if err == repositories.ErrJobNotFound {
			return apperrors.ErrJobNotFound
		}
		return apperrors.InternalError(err)
	}
	if alreadyDeleted {
		return nil
	}

	if err := s.notifications.NotifyJobRemoved(job.CustomerID, job); err != nil {
		logger.CtxWithError(ctx, "job removal notification failed", err, "job_id", jobID)
	}
	if job.TradespersonID != nil {
		if err := s.notifications.NotifyJobRemoved(*job.TradespersonID, job); err != nil {
			logger.CtxWithError(ctx, "job removal notification failed", err, "job_id", jobID)
		}
	}

	if err := s.index.DeleteObject(ctx, s.jobsIndex, jobID); err != nil {
		logger.CtxWithError(ctx, "job index delete failed", err, "job_id", jobID)
	}

	return nil
}

func (s *JobServiceImpl) GetOpenJobs() ([]*dto.JobResponse, error) {
	jobs, err := s.jobRepo.FindOpen()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewJobResponses(jobs), nil
}

func (s *JobServiceImpl) GetRecentOpenJobs(days int) ([]*dto.JobResponse, error) {
	if days <= 0 {
		days = 7
	}
	jobs, err := s.jobRepo.FindRecentOpen(days)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewJobResponses(jobs), nil
}

func (s *JobServiceImpl) GetJobsByCustomer(customerID string) ([]*dto.JobResponse, error) {
	jobs, err := s.jobRepo.FindByCustomer(customerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewJobResponses(jobs), nil
}

func (s *JobServiceImpl) ListJobs(page, pageSize int) ([]*dto.JobResponse, int64, error) {
	jobs, total, err := s.jobRepo.List(page, pageSize)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}
	return dto.NewJobResponses(jobs), total, nil
}

func (s *JobServiceImpl) indexJob(ctx context.Context, job *models.Job) {
	if err := s.index.SaveObject(ctx, s.jobsIndex, JobIndexObject(job)); err != nil {
		logger.CtxWithError(ctx, "job indexing failed", err, "job_id", job.ID)
	}
}

func toJSON(v interface{}) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
