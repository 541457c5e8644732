package repositories

import (
	"errors"

	"tradematch_backend/internal/models"

	"gorm.io/gorm"
)

type CRMRepository interface {
	FindCustomerByOwnerAndEmail(ownerID, email string) (*models.CRMCustomer, error)
	FindCustomerByOwnerAndPhone(ownerID, phone string) (*models.CRMCustomer, error)
	CreateCustomer(customer *models.CRMCustomer) error
	CreateInteraction(interaction *models.CRMInteraction) error
}

type CRMRepositoryImpl struct {
	db *gorm.DB
}

func NewCRMRepository(db *gorm.DB) CRMRepository {
	return &CRMRepositoryImpl{db: db}
}

func (r *CRMRepositoryImpl) FindCustomerByOwnerAndEmail(ownerID, email string) (*models.CRMCustomer, error) {
	var customer models.CRMCustomer
	err := r.db.Where("owner_id = ? AND email = ?", ownerID, email).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *CRMRepositoryImpl) FindCustomerByOwnerAndPhone(ownerID, phone string) (*models.CRMCustomer, error) {
	var customer models.CRMCustomer
	err := r.db.Where("owner_id = ? AND phone = ?", ownerID, phone).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *CRMRepositoryImpl) CreateCustomer(customer *models.CRMCustomer) error {
	return r.db.Create(customer).Error
}

func (r *CRMRepositoryImpl) CreateInteraction(interaction *models.CRMInteraction) error {
	return r.db.Create(interaction).Error
}
