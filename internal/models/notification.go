package models

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	BaseModel
	UserID  string `gorm:"not null;index"`
	Type    string `gorm:"not null"` // "new_job_match", "new_quote", "quote_accepted", "job_removed", "final_payment_due"
	Title   string `gorm:"not null"`
	Message string
	Data    datatypes.JSON `gorm:"type:jsonb"` // {"job_id": "...", "quote_id": "..."}
	IsRead  bool           `gorm:"default:false"`
	ReadAt  *time.Time
}
