package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type User struct {
	BaseModel
	Email        string   `gorm:"uniqueIndex;not null"`
	PasswordHash string   `gorm:"not null"`
	Role         UserRole `gorm:"type:varchar(20);not null"`
	Name         string
	Phone        string

	// Tradesperson profile. Ignored for customers.
	SubscriptionTier SubscriptionTier `gorm:"type:varchar(20);default:'basic'"`
	ServiceAreas     string           // free text, e.g. "east london, romford"
	Specialties      datatypes.JSON   `gorm:"type:jsonb"` // []string
	HourlyRate       *float64
	NewJobAlerts     bool `gorm:"default:true"`

	// Monthly quote quota window: [QuoteResetDate - 1 month, QuoteResetDate).
	// Rolled forward lazily on submission, never by a scheduled job.
	MonthlyQuotesUsed int `gorm:"default:0"`
	QuoteResetDate    *time.Time
	HasSubmittedQuote bool `gorm:"default:false"`
}

func (u *User) GetSpecialties() []string {
	var specialties []string
	_ = json.Unmarshal(u.Specialties, &specialties)
	return specialties
}

func (u *User) Tier() SubscriptionTier {
	if u.SubscriptionTier == "" {
		return TierBasic
	}
	return u.SubscriptionTier
}
