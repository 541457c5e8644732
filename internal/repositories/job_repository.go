package repositories

import (
	"errors"
	"time"

	"tradematch_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrJobNotFound = errors.New("job not found")
)

type JobRepository interface {
	Create(job *models.Job) error
	// FindByID treats soft-deleted rows as absent.
	FindByID(id string) (*models.Job, error)
	// FindByIDIncludingDeleted is the audit path.
	FindByIDIncludingDeleted(id string) (*models.Job, error)
	// UpdateFields applies a partial update: only the provided keys change.
	UpdateFields(id string, fields map[string]interface{}) error
	UpdateStatus(id string, status models.JobStatus) error
	// IncrementQuoteCount is atomic on the database side, safe under
	// concurrent quote submissions.
	IncrementQuoteCount(id string) error
	AppendPayment(id string, payment models.Payment) error

	FindOpen() ([]models.Job, error)
	FindRecentOpen(days int) ([]models.Job, error)
	FindByCustomer(customerID string) ([]models.Job, error)
	List(page, pageSize int) ([]models.Job, int64, error)

	// SoftDeleteCascade marks the job, its quotes and its conversations
	// deleted in one transaction. alreadyDeleted reports the idempotent
	// no-op case so callers can skip notifications.
	SoftDeleteCascade(jobID, adminID, reason string) (job *models.Job, alreadyDeleted bool, err error)
}

type JobRepositoryImpl struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &JobRepositoryImpl{db: db}
}

func (r *JobRepositoryImpl) Create(job *models.Job) error {
	return r.db.Create(job).Error
}

func (r *JobRepositoryImpl) FindByID(id string) (*models.Job, error) {
	var job models.Job
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (r *JobRepositoryImpl) FindByIDIncludingDeleted(id string) (*models.Job, error) {
	var job models.Job
	err := r.db.Where("id = ?", id).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (r *JobRepositoryImpl) UpdateFields(id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()
	return r.db.Model(&models.Job{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(fields).Error
}

func (r *JobRepositoryImpl) UpdateStatus(id string, status models.JobStatus) error {
	return r.db.Model(&models.Job{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

func (r *JobRepositoryImpl) IncrementQuoteCount(id string) error {
	return r.db.Model(&models.Job{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{
			"quote_count": gorm.Expr("quote_count + 1"),
			"updated_at":  time.Now(),
		}).Error
}

func (r *JobRepositoryImpl) AppendPayment(id string, payment models.Payment) error {
	job, err := r.FindByID(id)
	if err != nil {
		return err
	}

	payments := append(job.GetPayments(), payment)
	raw, err := marshalJSON(payments)
	if err != nil {
		return err
	}

	return r.UpdateFields(id, map[string]interface{}{"payments": raw})
}

func (r *JobRepositoryImpl) FindOpen() ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.
		Where("status = ? AND deleted_at IS NULL", models.JobStatusOpen).
		Order("created_at DESC").
		Find(&jobs).Error
	return jobs, err
}

func (r *JobRepositoryImpl) FindRecentOpen(days int) ([]models.Job, error) {
	var jobs []models.Job
	cutoff := time.Now().AddDate(0, 0, -days)
	err := r.db.
		Where("status = ? AND deleted_at IS NULL AND created_at >= ?", models.JobStatusOpen, cutoff).
		Order("created_at DESC").
		Find(&jobs).Error
	return jobs, err
}

func (r *JobRepositoryImpl) FindByCustomer(customerID string) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.
		Where("customer_id = ? AND deleted_at IS NULL", customerID).
		Order("created_at DESC").
		Find(&jobs).Error
	return jobs, err
}

func (r *JobRepositoryImpl) List(page, pageSize int) ([]models.Job, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var total int64
	if err := r.db.Model(&models.Job{}).Where("deleted_at IS NULL").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []models.Job
	err := r.db.
		Where("deleted_at IS NULL").
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&jobs).Error
	return jobs, total, err
}

func (r *JobRepositoryImpl) SoftDeleteCascade(jobID, adminID, reason string) (*models.Job, bool, error) {
	var job models.Job
	var alreadyDeleted bool

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", jobID).First(&job).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrJobNotFound
			}
			return err
		}

		if job.IsDeleted() {
			alreadyDeleted = true
			return nil
		}

		now := time.Now()
		marks := map[string]interface{}{
			"deleted_at":      now,
			"deleted_by":      adminID,
			"deletion_reason": reason,
			"updated_at":      now,
		}

		if err := tx.Model(&models.Job{}).Where("id = ?", jobID).Updates(marks).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Quote{}).
			Where("job_id = ? AND deleted_at IS NULL", jobID).
			Updates(marks).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Conversation{}).
			Where("job_id = ? AND deleted_at IS NULL", jobID).
			Updates(marks).Error; err != nil {
			return err
		}

		job.DeletedAt = &now
		job.DeletedBy = &adminID
		job.DeletionReason = &reason
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &job, alreadyDeleted, nil
}
