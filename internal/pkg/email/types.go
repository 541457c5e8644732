package email

import "fmt"

// Sender is the transactional email collaborator: one method per email
// type. Every method takes the recipient address, the contextual ids the
// template links to, and an optional display name. All sends are
// best-effort at call sites; a failed email never rolls anything back.
type Sender interface {
	SendNewJobAlert(to, name, jobID, jobTitle, serviceType string) error
	SendNewQuote(to, name, jobID, jobTitle, tradespersonName string) error
	SendQuoteAccepted(to, name, jobID, jobTitle string) error
	SendJobAccepted(to, name, jobID, jobTitle, tradespersonName string) error
	SendFinalPaymentDue(to, name, jobID, jobTitle string) error
}

type Config struct {
	SMTPHost  string
	SMTPPort  int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

func (c Config) Validate() error {
	if c.SMTPHost == "" {
		return fmt.Errorf("email: SMTP host is required")
	}
	if c.SMTPPort == 0 {
		return fmt.Errorf("email: SMTP port is required")
	}
	if c.FromEmail == "" {
		return fmt.Errorf("email: from address is required")
	}
	return nil
}
