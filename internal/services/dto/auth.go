package dto

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=customer tradesperson"`
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone"`

	// Tradesperson profile, ignored for customers.
	ServiceAreas string   `json:"service_areas"`
	Specialties  []string `json:"specialties"`
	HourlyRate   *float64 `json:"hourly_rate" validate:"omitempty,gt=0"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	Name         string   `json:"name"`
	Phone        string   `json:"phone,omitempty"`
	Tier         string   `json:"tier,omitempty"`
	ServiceAreas string   `json:"service_areas,omitempty"`
	Specialties  []string `json:"specialties,omitempty"`
	HourlyRate   *float64 `json:"hourly_rate,omitempty"`
	NewJobAlerts bool     `json:"new_job_alerts"`
}
