package services

import "tradematch_backend/internal/pkg/email"

// ServiceContainer wires every service behind one handle for the app layer.
type ServiceContainer struct {
	UserService         UserService
	JobService          JobService
	QuoteService        QuoteService
	MatchingService     MatchingService
	SearchService       SearchService
	NotificationService NotificationService
	CRMService          CRMService
	EmailSender         email.Sender
}
