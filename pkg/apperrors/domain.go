package apperrors

import (
	"fmt"
	"net/http"

	"tradematch_backend/internal/models"
)

// Factories for recurring domain errors. Repositories and services build
// their errors through these so the HTTP layer never inspects raw store
// errors.

// ErrNotFound converts a repository miss (or a soft-deleted row, treated
// identically) into a 404.
func ErrNotFound(err error, domain string) *AppError {
	return Wrap(err, CodeNotFound, domain, "Resource not found", http.StatusNotFound)
}

func ErrAlreadyExists(err error, domain string) *AppError {
	return Wrap(err, CodeAlreadyExists, domain, "Resource already exists", http.StatusConflict)
}

// ErrStateConflict is the transition-not-allowed error, e.g. accepting a
// quote on a job that already left the open/quoted states.
func ErrStateConflict(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrQuotaExceeded carries the used/limit pair in the message so the UI can
// explain the upgrade path.
func ErrQuotaExceeded(used, limit int) *AppError {
	return New(
		CodeQuotaExceeded,
		"quotes",
		fmt.Sprintf("Monthly quote limit reached (%d/%d). Upgrade to Pro or Business for unlimited quotes.", used, limit),
		http.StatusForbidden,
	).WithDetails(map[string]int{"used": used, "limit": limit})
}

// ErrExternalService marks a collaborator (geocoder, search index, email)
// failure.
func ErrExternalService(err error, domain string) *AppError {
	return Wrap(err, CodeExternalServiceError, domain, "External service unavailable", http.StatusBadGateway)
}

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

var ErrJobNotFound = New(
	CodeNotFound,
	"jobs",
	"Job not found",
	http.StatusNotFound,
)

var ErrQuoteNotFound = New(
	CodeNotFound,
	"quotes",
	"Quote not found",
	http.StatusNotFound,
)

var ErrNotJobOwner = New(
	CodeForbidden,
	"jobs",
	"Job belongs to a different customer",
	http.StatusForbidden,
)

var ErrNotAssignedTradesperson = New(
	CodeForbidden,
	"jobs",
	"Only the assigned tradesperson can perform this operation",
	http.StatusForbidden,
)

var ErrJobNotQuotable = New(
	CodeInvalidStatus,
	"jobs",
	fmt.Sprintf("Job is no longer accepting quotes (must be %s or %s)", models.JobStatusOpen, models.JobStatusQuoted),
	http.StatusConflict,
)

var ErrJobNotAcceptable = New(
	CodeInvalidStatus,
	"jobs",
	"Job is not in a state that allows quote acceptance",
	http.StatusConflict,
)

var ErrQuoteOnOwnJob = New(
	CodeInvalidOperation,
	"quotes",
	"Cannot quote on your own job",
	http.StatusBadRequest,
)
