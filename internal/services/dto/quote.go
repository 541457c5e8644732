package dto

import (
	"time"

	"tradematch_backend/internal/models"
)

type CreateQuoteRequest struct {
	Price             float64           `json:"price" validate:"required,gt=0"`
	DepositAmount     *float64          `json:"deposit_amount"`
	Description       string            `json:"description" validate:"max=5000"`
	EstimatedDuration string            `json:"estimated_duration"`
	AvailableDate     *time.Time        `json:"available_date"`
	LineItems         []models.LineItem `json:"line_items"`
}

type QuoteResponse struct {
	ID                string            `json:"id"`
	JobID             string            `json:"job_id"`
	TradespersonID    string            `json:"tradesperson_id"`
	TradespersonName  string            `json:"tradesperson_name"`
	TradespersonPhone string            `json:"tradesperson_phone"`
	Price             float64           `json:"price"`
	DepositAmount     *float64          `json:"deposit_amount,omitempty"`
	Description       string            `json:"description"`
	EstimatedDuration string            `json:"estimated_duration"`
	AvailableDate     *time.Time        `json:"available_date,omitempty"`
	LineItems         []models.LineItem `json:"line_items,omitempty"`
	Status            string            `json:"status"`
	AcceptedDate      *time.Time        `json:"accepted_date,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// NewQuoteResponse normalizes a stored quote for listing. Legacy rows can
// miss denormalized contact fields or a price; defaults keep listings
// rendering instead of crashing.
func NewQuoteResponse(quote *models.Quote) *QuoteResponse {
	name := quote.TradespersonName
	if name == "" {
		name = "N/A"
	}
	phone := quote.TradespersonPhone
	if phone == "" {
		phone = "N/A"
	}

	price := quote.Price
	if price < 0 {
		price = 0
	}

	return &QuoteResponse{
		ID:                quote.ID,
		JobID:             quote.JobID,
		TradespersonID:    quote.TradespersonID,
		TradespersonName:  name,
		TradespersonPhone: phone,
		Price:             price,
		DepositAmount:     quote.DepositAmount,
		Description:       quote.Description,
		EstimatedDuration: quote.EstimatedDuration,
		AvailableDate:     quote.AvailableDate,
		LineItems:         quote.GetLineItems(),
		Status:            string(quote.Status),
		AcceptedDate:      quote.AcceptedDate,
		CreatedAt:         quote.CreatedAt,
		UpdatedAt:         quote.UpdatedAt,
	}
}

func NewQuoteResponses(quotes []models.Quote) []*QuoteResponse {
	responses := make([]*QuoteResponse, 0, len(quotes))
	for i := range quotes {
		responses = append(responses, NewQuoteResponse(&quotes[i]))
	}
	return responses
}
