package email

import "tradematch_backend/internal/logger"

// NoopSender logs instead of sending. Used when SMTP is not configured.
type NoopSender struct{}

func NewNoopSender() Sender {
	return &NoopSender{}
}

func (s *NoopSender) log(kind, to, jobID string) error {
	logger.Info("email suppressed (SMTP not configured)",
		"type", kind,
		"to", to,
		"job_id", jobID,
	)
	return nil
}

func (s *NoopSender) SendNewJobAlert(to, name, jobID, jobTitle, serviceType string) error {
	return s.log("new_job_alert", to, jobID)
}

func (s *NoopSender) SendNewQuote(to, name, jobID, jobTitle, tradespersonName string) error {
	return s.log("new_quote", to, jobID)
}

func (s *NoopSender) SendQuoteAccepted(to, name, jobID, jobTitle string) error {
	return s.log("quote_accepted", to, jobID)
}

func (s *NoopSender) SendJobAccepted(to, name, jobID, jobTitle, tradespersonName string) error {
	return s.log("job_accepted", to, jobID)
}

func (s *NoopSender) SendFinalPaymentDue(to, name, jobID, jobTitle string) error {
	return s.log("final_payment_due", to, jobID)
}
