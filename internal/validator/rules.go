package validator

import (
	"log"

	"tradematch_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules wires domain-enum rules into the validator instance.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Startup-time failure, the app must not run without its rules.
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-urgency", validateUrgency)
	mustRegister("is-job-status", validateJobStatus)
	mustRegister("is-payment-type", validatePaymentType)
	mustRegister("is-sort-key", validateSortKey)
}

func validateUrgency(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // 'required' covers empties
	}
	switch models.JobUrgency(value) {
	case models.UrgencyFlexible, models.UrgencySoon, models.UrgencyUrgent, models.UrgencyEmergency:
		return true
	}
	return false
}

func validateJobStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.JobStatus(value) {
	case models.JobStatusOpen, models.JobStatusQuoted, models.JobStatusAssigned,
		models.JobStatusCompleted, models.JobStatusCancelled:
		return true
	}
	return false
}

func validatePaymentType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.PaymentType(value) {
	case models.PaymentTypeDeposit, models.PaymentTypeFinal:
		return true
	}
	return false
}

func validateSortKey(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "newest", "budget_high", "budget_low", "distance", "urgency":
		return true
	}
	return false
}
