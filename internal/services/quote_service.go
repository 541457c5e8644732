package services

import (
	"context"
	"fmt"
	"time"

	"tradematch_backend/internal/logger"
	"tradematch_backend/internal/models"
	"tradematch_backend/internal/pkg/email"
	"tradematch_backend/internal/repositories"
	"tradematch_backend/internal/services/dto"
	"tradematch_backend/pkg/apperrors"
)

type QuoteService interface {
	CreateQuote(ctx context.Context, tradespersonID, jobID string, req *dto.CreateQuoteRequest) (*dto.QuoteResponse, error)
	GetQuotesForJob(jobID string) ([]*dto.QuoteResponse, error)
	AcceptQuote(ctx context.Context, jobID, quoteID, customerID string) (*dto.JobResponse, *dto.QuoteResponse, error)
}

type QuoteServiceImpl struct {
	quoteRepo     repositories.QuoteRepository
	jobRepo       repositories.JobRepository
	userRepo      repositories.UserRepository
	notifications NotificationService
	emailSender   email.Sender
	crm           CRMService

	// now is swappable so quota-window tests can cross a reset boundary.
	now func() time.Time
}

func NewQuoteService(
	quoteRepo repositories.QuoteRepository,
	jobRepo repositories.JobRepository,
	userRepo repositories.UserRepository,
	notifications NotificationService,
	emailSender email.Sender,
	crm CRMService,
) QuoteService {
	return &QuoteServiceImpl{
		quoteRepo:     quoteRepo,
		jobRepo:       jobRepo,
		userRepo:      userRepo,
		notifications: notifications,
		emailSender:   emailSender,
		crm:           crm,
		now:           time.Now,
	}
}

// CreateQuote submits a quote against an open or quoted job. Basic-tier
// tradespeople consume one unit of a monthly quota; pro and business are
// unlimited. The quota window rolls forward lazily on submission.
func (s *QuoteServiceImpl) CreateQuote(ctx context.Context, tradespersonID, jobID string, req *dto.CreateQuoteRequest) (*dto.QuoteResponse, error) {
	tradesperson, err := s.userRepo.FindByID(tradespersonID)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return nil, apperrors.ErrNotFound(err, "users")
		}
		return nil, apperrors.InternalError(err)
	}
	if tradesperson.Role != models.UserRoleTradesperson {
		return nil, apperrors.ErrInsufficientPermissions
	}

	now := s.now()
	usage, resetDate := rollQuotaWindow(tradesperson, now)

	if tradesperson.Tier() == models.TierBasic && usage >= models.BasicTierQuoteLimit {
		return nil, apperrors.ErrQuotaExceeded(usage, models.BasicTierQuoteLimit)
	}

	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		if err == repositories.ErrJobNotFound {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if job.Status != models.JobStatusOpen && job.Status != models.JobStatusQuoted {
		return nil, apperrors.ErrJobNotQuotable
	}
	if job.CustomerID == tradespersonID {
		return nil, apperrors.ErrQuoteOnOwnJob
	}

	deposit := req.DepositAmount
	if deposit != nil && *deposit <= 0 {
		deposit = nil
	}

	name := tradesperson.Name
	if name == "" {
		name = "N/A"
	}
	phone := tradesperson.Phone
	if phone == "" {
		phone = "N/A"
	}

	lineItemsJSON, err := toJSON(req.LineItems)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	quote := &models.Quote{
		JobID:             jobID,
		TradespersonID:    tradespersonID,
		TradespersonName:  name,
		TradespersonPhone: phone,
		Price:             req.Price,
		DepositAmount:     deposit,
		Description:       req.Description,
		EstimatedDuration: req.EstimatedDuration,
		AvailableDate:     req.AvailableDate,
		LineItems:         lineItemsJSON,
		Status:            models.QuoteStatusPending,
	}

	if err := s.quoteRepo.Create(quote); err != nil {
		logger.CtxWithError(ctx, "quote create failed", err, "job_id", jobID)
		return nil, apperrors.InternalError(err)
	}

	if err := s.jobRepo.IncrementQuoteCount(jobID); err != nil {
		logger.CtxWithError(ctx, "quote count increment failed", err, "job_id", jobID)
	}
	if job.Status == models.JobStatusOpen {
		if err := s.jobRepo.UpdateStatus(jobID, models.JobStatusQuoted); err != nil {
			logger.CtxWithError(ctx, "job status transition to quoted failed", err, "job_id", jobID)
		}
	}

	// Read-then-write: two concurrent submissions can both see usage=4 and
	// both land on 5. Accepted; the quota is a product limit, not a ledger.
	if tradesperson.Tier() == models.TierBasic {
		usage++
	}
	if err := s.userRepo.UpdateQuoteUsage(tradespersonID, usage, resetDate, true); err != nil {
		logger.CtxWithError(ctx, "quote usage update failed", err, "tradesperson_id", tradespersonID)
	}

	s.notifyCustomerOfQuote(ctx, job, quote)

	return dto.NewQuoteResponse(quote), nil
}

// rollQuotaWindow returns the usage and reset boundary effective at "now".
// A missing boundary starts a fresh window at the first instant of next
// month; a passed boundary advances a calendar month at a time, always
// pinned to the 1st. Both cases reset usage to zero, so a stale counter on
// a row without a boundary can never lock the tradesperson out.
func rollQuotaWindow(user *models.User, now time.Time) (int, time.Time) {
	if user.QuoteResetDate == nil {
		return 0, firstOfNextMonth(now)
	}

	usage := user.MonthlyQuotesUsed
	resetDate := *user.QuoteResetDate
	if now.Before(resetDate) {
		return usage, resetDate
	}

	for !now.Before(resetDate) {
		resetDate = firstOfNextMonth(resetDate)
	}
	return 0, resetDate
}

func firstOfNextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
}

func (s *QuoteServiceImpl) notifyCustomerOfQuote(ctx context.Context, job *models.Job, quote *models.Quote) {
	if err := s.notifications.NotifyNewQuote(job.CustomerID, job, quote); err != nil {
		logger.CtxWithError(ctx, "new quote notification failed", err, "job_id", job.ID)
	}

	customer, err := s.userRepo.FindByID(job.CustomerID)
	if err != nil {
		logger.CtxWithError(ctx, "customer lookup failed, skipping quote email", err, "job_id", job.ID)
		return
	}
	if customer.Email == "" {
		return
	}
	if err := s.emailSender.SendNewQuote(customer.Email, customer.Name, job.ID, job.Title, quote.TradespersonName); err != nil {
		logger.CtxWithError(ctx, "new quote email failed", err, "job_id", job.ID)
	}
}

func (s *QuoteServiceImpl) GetQuotesForJob(jobID string) ([]*dto.QuoteResponse, error) {
	if _, err := s.jobRepo.FindByID(jobID); err != nil {
		if err == repositories.ErrJobNotFound {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	quotes, err := s.quoteRepo.FindByJob(jobID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewQuoteResponses(quotes), nil
}

// AcceptQuote runs the acceptance transaction and then fires the post-commit
// side effects: notices to both parties and, for business-tier tradespeople,
// a CRM customer entry. Side effects never roll the acceptance back.
func (s *QuoteServiceImpl) AcceptQuote(ctx context.Context, jobID, quoteID, customerID string) (*dto.JobResponse, *dto.QuoteResponse, error) {
	job, quote, err := s.quoteRepo.AcceptQuote(jobID, quoteID, customerID)
	if err != nil {
		if _, ok := err.(*apperrors.AppError); ok {
			return nil, nil, err
		}
		logger.CtxWithError(ctx, "quote acceptance failed", err, "job_id", jobID, "quote_id", quoteID)
		return nil, nil, apperrors.InternalError(err)
	}

	s.notifyAfterAcceptance(ctx, job, quote)

	return dto.NewJobResponse(job), dto.NewQuoteResponse(quote), nil
}

func (s *QuoteServiceImpl) notifyAfterAcceptance(ctx context.Context, job *models.Job, quote *models.Quote) {
	if err := s.notifications.NotifyQuoteAccepted(quote.TradespersonID, job, quote); err != nil {
		logger.CtxWithError(ctx, "quote accepted notification failed", err, "job_id", job.ID)
	}

	tradesperson, tpErr := s.userRepo.FindByID(quote.TradespersonID)
	if tpErr != nil {
		logger.CtxWithError(ctx, "tradesperson lookup failed after acceptance", tpErr, "job_id", job.ID)
	} else if tradesperson.Email != "" {
		if err := s.emailSender.SendQuoteAccepted(tradesperson.Email, tradesperson.Name, job.ID, job.Title); err != nil {
			logger.CtxWithError(ctx, "quote accepted email failed", err, "job_id", job.ID)
		}
	}

	customer, err := s.userRepo.FindByID(job.CustomerID)
	if err != nil {
		logger.CtxWithError(ctx, "customer lookup failed after acceptance", err, "job_id", job.ID)
		return
	}
	if customer.Email != "" {
		if err := s.emailSender.SendJobAccepted(customer.Email, customer.Name, job.ID, job.Title, quote.TradespersonName); err != nil {
			logger.CtxWithError(ctx, "job accepted email failed", err, "job_id", job.ID)
		}
	}

	if tpErr != nil || tradesperson.Tier() != models.TierBusiness {
		return
	}
	crmCustomer, err := s.crm.FindOrCreateCustomer(quote.TradespersonID, CRMContact{
		Name:  customer.Name,
		Email: customer.Email,
		Phone: customer.Phone,
	})
	if err != nil {
		logger.CtxWithError(ctx, "CRM customer sync failed after acceptance", err, "job_id", job.ID)
		return
	}
	note := fmt.Sprintf("Quote accepted for job: %s", job.Title)
	if err := s.crm.RecordInteraction(quote.TradespersonID, crmCustomer.ID, note); err != nil {
		logger.CtxWithError(ctx, "CRM interaction record failed after acceptance", err, "job_id", job.ID)
	}
}
