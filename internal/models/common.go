package models

import (
	"time"
)

type BaseModel struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	CreatedAt time.Time `gorm:"default:now()"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// SoftDelete carries the audit fields for rows that are never physically
// removed. A row with DeletedAt set is excluded from every listing and
// search path but stays addressable by id.
type SoftDelete struct {
	DeletedAt      *time.Time `gorm:"index"`
	DeletedBy      *string
	DeletionReason *string
}

func (s SoftDelete) IsDeleted() bool {
	return s.DeletedAt != nil
}
