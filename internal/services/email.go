package services

import (
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailService sends account lifecycle emails through SendGrid. Sends are
// best-effort: failures are logged and never surfaced to the caller, and a
// nil *EmailService is a no-op so the server runs without an API key.
type EmailService struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewEmailService(apiKey, fromAddress string) *EmailService {
	return &EmailService{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail("Task App Team", fromAddress),
	}
}

// SendWelcome sends the registration welcome email.
func (s *EmailService) SendWelcome(toAddress, name string) {
	body := fmt.Sprintf("Dear %s,\n\nWe are so glad that you have joined us!\n\nRegards,\n\nTask App Team", name)
	s.send(toAddress, name, "Welcome to Task App", body)
}

// SendGoodbye sends the account deletion goodbye email.
func (s *EmailService) SendGoodbye(toAddress, name string) {
	body := fmt.Sprintf("Dear %s,\n\nWe are so sorry to see you go!\n\nRegards,\n\nTask App Team", name)
	s.send(toAddress, name, "Goodbye from Task App", body)
}

func (s *EmailService) send(toAddress, name, subject, body string) {
	if s == nil {
		return
	}
	message := mail.NewSingleEmail(s.from, subject, mail.NewEmail(name, toAddress), body, "")
	resp, err := s.client.Send(message)
	if err != nil {
		log.Printf("Failed to send %q email to %s: %v", subject, toAddress, err)
		return
	}
	if resp.StatusCode >= 400 {
		log.Printf("SendGrid rejected %q email to %s: status %d", subject, toAddress, resp.StatusCode)
	}
}
