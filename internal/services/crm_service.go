package services

import (
	"tradematch_backend/internal/models"
	"tradematch_backend/internal/repositories"
)

// CRMContact is the customer-side contact snapshot synced into a
// business-tier tradesperson's customer book.
type CRMContact struct {
	Name  string
	Email string
	Phone string
}

// CRMService maintains the per-tradesperson customer book. It is invoked
// after quote acceptance and job completion, for business-tier tradespeople
// only; callers treat every failure as soft.
type CRMService interface {
	FindOrCreateCustomer(ownerID string, contact CRMContact) (*models.CRMCustomer, error)
	RecordInteraction(ownerID, customerID, note string) error
}

type CRMServiceImpl struct {
	crmRepo repositories.CRMRepository
}

func NewCRMService(crmRepo repositories.CRMRepository) CRMService {
	return &CRMServiceImpl{crmRepo: crmRepo}
}

// FindOrCreateCustomer matches on owner+email first, then owner+phone, and
// creates a new entry when neither matches.
func (s *CRMServiceImpl) FindOrCreateCustomer(ownerID string, contact CRMContact) (*models.CRMCustomer, error) {
	if contact.Email != "" {
		customer, err := s.crmRepo.FindCustomerByOwnerAndEmail(ownerID, contact.Email)
		if err != nil {
			return nil, err
		}
		if customer != nil {
			return customer, nil
		}
	}

	if contact.Phone != "" {
		customer, err := s.crmRepo.FindCustomerByOwnerAndPhone(ownerID, contact.Phone)
		if err != nil {
			return nil, err
		}
		if customer != nil {
			return customer, nil
		}
	}

	customer := &models.CRMCustomer{
		OwnerID: ownerID,
		Name:    contact.Name,
		Email:   contact.Email,
		Phone:   contact.Phone,
	}
	if err := s.crmRepo.CreateCustomer(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CRMServiceImpl) RecordInteraction(ownerID, customerID, note string) error {
	return s.crmRepo.CreateInteraction(&models.CRMInteraction{
		OwnerID:    ownerID,
		CustomerID: customerID,
		Note:       note,
	})
}
