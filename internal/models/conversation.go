package models

// Conversation is the message thread between a customer and a tradesperson
// about one job. Messaging itself lives outside this service; the row exists
// here so the admin delete cascade can mark it alongside the job.
type Conversation struct {
	BaseModel
	JobID          string `gorm:"not null;index"`
	CustomerID     string `gorm:"not null;index"`
	TradespersonID string `gorm:"not null;index"`

	SoftDelete
}
