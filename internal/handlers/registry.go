package handlers

import (
	"tradematch_backend/internal/services"
	"tradematch_backend/internal/validator"
)

// HandlerContainer bundles every HTTP handler for route wiring.
type HandlerContainer struct {
	Auth          *AuthHandler
	Jobs          *JobHandler
	Quotes        *QuoteHandler
	Search        *SearchHandler
	Notifications *NotificationHandler
}

func NewHandlerContainer(svcs *services.ServiceContainer, v *validator.Validator) *HandlerContainer {
	base := NewBaseHandler(v)
	return &HandlerContainer{
		Auth:          NewAuthHandler(base, svcs.UserService),
		Jobs:          NewJobHandler(base, svcs.JobService),
		Quotes:        NewQuoteHandler(base, svcs.QuoteService),
		Search:        NewSearchHandler(base, svcs.SearchService),
		Notifications: NewNotificationHandler(base, svcs.NotificationService),
	}
}
