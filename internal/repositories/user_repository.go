package repositories

import (
	"errors"
	"time"

	"tradematch_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

type UserRepository interface {
	FindByID(id string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error

	// FindAlertableTradespeople is the matching candidate pool: every
	// tradesperson with new-job alerts switched on.
	FindAlertableTradespeople() ([]models.User, error)
	FindTradespeople() ([]models.User, error)

	// UpdateQuoteUsage writes the quota-window fields in one statement.
	// Read-then-write at the caller; the documented race window is the gap
	// between the caller's read and this write.
	UpdateQuoteUsage(userID string, used int, resetDate time.Time, hasSubmitted bool) error
}

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) FindByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepositoryImpl) Update(user *models.User) error {
	return r.db.Save(user).Error
}

func (r *UserRepositoryImpl) FindAlertableTradespeople() ([]models.User, error) {
	var users []models.User
	err := r.db.
		Where("role = ? AND new_job_alerts = ?", models.UserRoleTradesperson, true).
		Find(&users).Error
	return users, err
}

func (r *UserRepositoryImpl) FindTradespeople() ([]models.User, error) {
	var users []models.User
	err := r.db.
		Where("role = ?", models.UserRoleTradesperson).
		Find(&users).Error
	return users, err
}

func (r *UserRepositoryImpl) UpdateQuoteUsage(userID string, used int, resetDate time.Time, hasSubmitted bool) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"monthly_quotes_used": used,
			"quote_reset_date":    resetDate,
			"has_submitted_quote": hasSubmitted,
			"updated_at":          time.Now(),
		}).Error
}
