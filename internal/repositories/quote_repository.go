package repositories

import (
	"errors"
	"time"

	"tradematch_backend/internal/models"
	"tradematch_backend/pkg/apperrors"

	"gorm.io/gorm"
)

var (
	ErrQuoteNotFound = errors.New("quote not found")
)

type QuoteRepository interface {
	Create(quote *models.Quote) error
	FindByID(id string) (*models.Quote, error)
	// FindByJob returns non-deleted quotes, oldest first.
	FindByJob(jobID string) ([]models.Quote, error)

	// AcceptQuote runs the acceptance transaction: both documents are read
	// and written inside it, and it aborts unless the job is still
	// open/quoted and owned by customerID. Failures come back as apperrors
	// so callers can distinguish not-found / ownership / state conflicts.
	AcceptQuote(jobID, quoteID, customerID string) (*models.Job, *models.Quote, error)
}

type QuoteRepositoryImpl struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) QuoteRepository {
	return &QuoteRepositoryImpl{db: db}
}

func (r *QuoteRepositoryImpl) Create(quote *models.Quote) error {
	return r.db.Create(quote).Error
}

func (r *QuoteRepositoryImpl) FindByID(id string) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&quote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, err
	}
	return &quote, nil
}

func (r *QuoteRepositoryImpl) FindByJob(jobID string) ([]models.Quote, error) {
	var quotes []models.Quote
	err := r.db.
		Where("job_id = ? AND deleted_at IS NULL", jobID).
		Order("created_at ASC").
		Find(&quotes).Error
	return quotes, err
}

func (r *QuoteRepositoryImpl) AcceptQuote(jobID, quoteID, customerID string) (*models.Job, *models.Quote, error) {
	var job models.Job
	var quote models.Quote

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND deleted_at IS NULL", jobID).First(&job).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrJobNotFound
			}
			return err
		}
		if err := tx.Where("id = ? AND job_id = ? AND deleted_at IS NULL", quoteID, jobID).First(&quote).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrQuoteNotFound
			}
			return err
		}

		if job.CustomerID != customerID {
			return apperrors.ErrNotJobOwner
		}
		if job.Status != models.JobStatusOpen && job.Status != models.JobStatusQuoted {
			return apperrors.ErrJobNotAcceptable
		}

		now := time.Now()

		jobUpdate := tx.Model(&models.Job{}).
			// Re-check status in the write itself so a concurrent acceptance
			// that slipped between read and commit updates zero rows.
			Where("id = ? AND status IN ?", jobID, []models.JobStatus{models.JobStatusOpen, models.JobStatusQuoted}).
			Updates(map[string]interface{}{
				"status":            models.JobStatusAssigned,
				"tradesperson_id":   quote.TradespersonID,
				"accepted_quote_id": quote.ID,
				"updated_at":        now,
			})
		if jobUpdate.Error != nil {
			return jobUpdate.Error
		}
		if jobUpdate.RowsAffected == 0 {
			return apperrors.ErrJobNotAcceptable
		}

		if err := tx.Model(&models.Quote{}).
			Where("id = ?", quote.ID).
			Updates(map[string]interface{}{
				"status":        models.QuoteStatusAccepted,
				"accepted_date": now,
				"updated_at":    now,
			}).Error; err != nil {
			return err
		}

		job.Status = models.JobStatusAssigned
		job.TradespersonID = &quote.TradespersonID
		job.AcceptedQuoteID = &quote.ID
		job.UpdatedAt = now
		quote.Status = models.QuoteStatusAccepted
		quote.AcceptedDate = &now
		quote.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &job, &quote, nil
}
