package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type Quote struct {
	BaseModel
	JobID string `gorm:"not null;index"`

	// Denormalized at submission time so quote listings never need a join.
	TradespersonID    string `gorm:"not null;index"`
	TradespersonName  string
	TradespersonPhone string

	Price             float64
	DepositAmount     *float64 // nil when not requested; non-positive values are stripped on create
	Description       string
	EstimatedDuration string
	AvailableDate     *time.Time
	LineItems         datatypes.JSON `gorm:"type:jsonb"` // []LineItem

	Status       QuoteStatus `gorm:"type:varchar(20);default:'pending'"`
	AcceptedDate *time.Time

	SoftDelete
}

type LineItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

func (q *Quote) GetLineItems() []LineItem {
	var items []LineItem
	_ = json.Unmarshal(q.LineItems, &items)
	return items
}
