package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type Job struct {
	BaseModel
	CustomerID  string `gorm:"not null;index"`
	Title       string `gorm:"not null"`
	Description string
	ServiceType string         `gorm:"index"`
	Skills      datatypes.JSON `gorm:"type:jsonb"` // []string
	Keywords    datatypes.JSON `gorm:"type:jsonb"` // []string, derived on write

	// Location
	Postcode  string
	Town      string
	Address   string
	Latitude  *float64
	Longitude *float64
	CitySlug  string `gorm:"index"`

	Urgency JobUrgency `gorm:"type:varchar(20);default:'flexible'"`
	Budget  *float64

	Status          JobStatus `gorm:"type:varchar(20);default:'open';index"`
	TradespersonID  *string   // set on assignment only
	AcceptedQuoteID *string
	QuoteCount      int `gorm:"default:0"`

	Payments datatypes.JSON `gorm:"type:jsonb"` // []Payment

	ScheduledDate *time.Time
	CompletedDate *time.Time

	SoftDelete
}

// Payment is one payment record against a job. Processing happens in an
// external collaborator; only the outcome is stored here.
type Payment struct {
	Type      PaymentType `json:"type"`
	Amount    float64     `json:"amount"`
	Reference string      `json:"reference"`
	PaidAt    time.Time   `json:"paid_at"`
}

func (j *Job) GetSkills() []string {
	var skills []string
	_ = json.Unmarshal(j.Skills, &skills)
	return skills
}

func (j *Job) GetKeywords() []string {
	var keywords []string
	_ = json.Unmarshal(j.Keywords, &keywords)
	return keywords
}

func (j *Job) GetPayments() []Payment {
	var payments []Payment
	_ = json.Unmarshal(j.Payments, &payments)
	return payments
}
