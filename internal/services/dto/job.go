package dto

import (
	"time"

	"tradematch_backend/internal/models"
)

type JobLocation struct {
	Postcode  string   `json:"postcode"`
	Town      string   `json:"town"`
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type CreateJobRequest struct {
	CustomerID    string      `json:"-"`
	Title         string      `json:"title" validate:"required,min=3,max=200"`
	Description   string      `json:"description" validate:"max=5000"`
	ServiceType   string      `json:"service_type" validate:"required"`
	Skills        []string    `json:"skills"`
	Location      JobLocation `json:"location"`
	CitySlug      string      `json:"city_slug"`
	Urgency       string      `json:"urgency" validate:"is-urgency"`
	Budget        *float64    `json:"budget" validate:"omitempty,gt=0"`
	ScheduledDate *time.Time  `json:"scheduled_date"`
}

// UpdateJobRequest carries partial-update semantics: nil means "leave as is".
type UpdateJobRequest struct {
	Title         *string      `json:"title" validate:"omitempty,min=3,max=200"`
	Description   *string      `json:"description" validate:"omitempty,max=5000"`
	ServiceType   *string      `json:"service_type"`
	Skills        []string     `json:"skills"`
	Location      *JobLocation `json:"location"`
	CitySlug      *string      `json:"city_slug"`
	Urgency       *string      `json:"urgency" validate:"omitempty,is-urgency"`
	Budget        *float64     `json:"budget" validate:"omitempty,gt=0"`
	ScheduledDate *time.Time   `json:"scheduled_date"`
}

type RecordPaymentRequest struct {
	Type      string  `json:"type" validate:"required,is-payment-type"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Reference string  `json:"reference" validate:"required"`
}

type JobResponse struct {
	ID              string           `json:"id"`
	CustomerID      string           `json:"customer_id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	ServiceType     string           `json:"service_type"`
	Skills          []string         `json:"skills"`
	Location        JobLocation      `json:"location"`
	CitySlug        string           `json:"city_slug"`
	Urgency         string           `json:"urgency"`
	Budget          *float64         `json:"budget,omitempty"`
	Status          string           `json:"status"`
	TradespersonID  *string          `json:"tradesperson_id,omitempty"`
	AcceptedQuoteID *string          `json:"accepted_quote_id,omitempty"`
	QuoteCount      int              `json:"quote_count"`
	Payments        []models.Payment `json:"payments,omitempty"`
	ScheduledDate   *time.Time       `json:"scheduled_date,omitempty"`
	CompletedDate   *time.Time       `json:"completed_date,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NewJobResponse is the one mapper from the stored row to the API shape.
func NewJobResponse(job *models.Job) *JobResponse {
	return &JobResponse{
		ID:          job.ID,
		CustomerID:  job.CustomerID,
		Title:       job.Title,
		Description: job.Description,
		ServiceType: job.ServiceType,
		Skills:      job.GetSkills(),
		Location: JobLocation{
			Postcode:  job.Postcode,
			Town:      job.Town,
			Address:   job.Address,
			Latitude:  job.Latitude,
			Longitude: job.Longitude,
		},
		CitySlug:        job.CitySlug,
		Urgency:         string(job.Urgency),
		Budget:          job.Budget,
		Status:          string(job.Status),
		TradespersonID:  job.TradespersonID,
		AcceptedQuoteID: job.AcceptedQuoteID,
		QuoteCount:      job.QuoteCount,
		Payments:        job.GetPayments(),
		ScheduledDate:   job.ScheduledDate,
		CompletedDate:   job.CompletedDate,
		CreatedAt:       job.CreatedAt,
		UpdatedAt:       job.UpdatedAt,
	}
}

func NewJobResponses(jobs []models.Job) []*JobResponse {
	responses := make([]*JobResponse, 0, len(jobs))
	for i := range jobs {
		responses = append(responses, NewJobResponse(&jobs[i]))
	}
	return responses
}
