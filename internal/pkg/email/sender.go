package email

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// GomailSender delivers through SMTP via gomail.
type GomailSender struct {
	config Config
	dialer *gomail.Dialer
}

func NewGomailSender(config Config) (Sender, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &GomailSender{
		config: config,
		dialer: gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.Username, config.Password),
	}, nil
}

func (s *GomailSender) send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	from := s.config.FromEmail
	if s.config.FromName != "" {
		from = m.FormatAddress(s.config.FromEmail, s.config.FromName)
	}
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email %q to %s: %w", subject, to, err)
	}
	return nil
}

func greeting(name string) string {
	if name == "" {
		return "Hi,"
	}
	return fmt.Sprintf("Hi %s,", name)
}

func (s *GomailSender) SendNewJobAlert(to, name, jobID, jobTitle, serviceType string) error {
	subject := fmt.Sprintf("New job near you: %s", jobTitle)
	body := fmt.Sprintf(
		"<p>%s</p><p>A new <strong>%s</strong> job matching your trade and area was just posted: <strong>%s</strong>.</p>"+
			"<p><a href=\"https://app.tradematch.uk/jobs/%s\">View the job and send a quote</a></p>",
		greeting(name), serviceType, jobTitle, jobID,
	)
	return s.send(to, subject, body)
}

func (s *GomailSender) SendNewQuote(to, name, jobID, jobTitle, tradespersonName string) error {
	subject := fmt.Sprintf("New quote for your job: %s", jobTitle)
	body := fmt.Sprintf(
		"<p>%s</p><p><strong>%s</strong> sent you a quote for <strong>%s</strong>.</p>"+
			"<p><a href=\"https://app.tradematch.uk/jobs/%s/quotes\">Review quotes</a></p>",
		greeting(name), tradespersonName, jobTitle, jobID,
	)
	return s.send(to, subject, body)
}

func (s *GomailSender) SendQuoteAccepted(to, name, jobID, jobTitle string) error {
	subject := fmt.Sprintf("Your quote was accepted: %s", jobTitle)
	body := fmt.Sprintf(
		"<p>%s</p><p>Good news, your quote for <strong>%s</strong> was accepted. The job is now assigned to you.</p>"+
			"<p><a href=\"https://app.tradematch.uk/jobs/%s\">View the job</a></p>",
		greeting(name), jobTitle, jobID,
	)
	return s.send(to, subject, body)
}

func (s *GomailSender) SendJobAccepted(to, name, jobID, jobTitle, tradespersonName string) error {
	subject := fmt.Sprintf("You accepted a quote for: %s", jobTitle)
	body := fmt.Sprintf(
		"<p>%s</p><p>You accepted <strong>%s</strong>'s quote for <strong>%s</strong>. They will be in touch to arrange the work.</p>"+
			"<p><a href=\"https://app.tradematch.uk/jobs/%s\">View the job</a></p>",
		greeting(name), tradespersonName, jobTitle, jobID,
	)
	return s.send(to, subject, body)
}

func (s *GomailSender) SendFinalPaymentDue(to, name, jobID, jobTitle string) error {
	subject := fmt.Sprintf("Final payment due: %s", jobTitle)
	body := fmt.Sprintf(
		"<p>%s</p><p>The work on <strong>%s</strong> has been marked complete. The final payment is now due.</p>"+
			"<p><a href=\"https://app.tradematch.uk/jobs/%s/payment\">Pay now</a></p>",
		greeting(name), jobTitle, jobID,
	)
	return s.send(to, subject, body)
}
