package models

// CRMCustomer is an entry in a business-tier tradesperson's customer book,
// created or refreshed after quote acceptance and job completion.
type CRMCustomer struct {
	BaseModel
	OwnerID string `gorm:"not null;index"` // tradesperson
	Name    string
	Email   string
	Phone   string
}

type CRMInteraction struct {
	BaseModel
	OwnerID    string `gorm:"not null;index"`
	CustomerID string `gorm:"not null;index"`
	Note       string
}
