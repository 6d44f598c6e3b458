package mailer

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

// ContactMessage is one contact form submission.
type ContactMessage struct {
	Name    string
	Email   string
	Message string
}

type IContactMailer interface {
	SendContact(msg ContactMessage) error
}

// Sender is the part of gomail.Dialer the mailer needs.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type contactMailer struct {
	sender      Sender
	senderEmail string
	senderName  string
	recipient   string
}

func NewContactMailer(host string, port int, username, password, senderName, recipient string) IContactMailer {
	return NewContactMailerWithSender(gomail.NewDialer(host, port, username, password), username, senderName, recipient)
}

func NewContactMailerWithSender(sender Sender, senderEmail, senderName, recipient string) IContactMailer {
	if recipient == "" {
		recipient = senderEmail
	}
	return &contactMailer{sender: sender, senderEmail: senderEmail, senderName: senderName, recipient: recipient}
}

// BuildMessage renders a submission. The visitor's address goes in
// Reply-To; the From header stays on the authenticated account.
func (s *contactMailer) BuildMessage(msg ContactMessage) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", s.recipient)
	m.SetAddressHeader("Reply-To", msg.Email, msg.Name)
	m.SetHeader("Subject", fmt.Sprintf("Contact Form Submission from %s", msg.Name))
	m.SetBody("text/plain", msg.Message)
	m.AddAlternative("text/html", fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>New message from %s</h2>
			<p>%s</p>
		</div>
	`, html.EscapeString(msg.Name), html.EscapeString(msg.Message)))
	return m
}

func (s *contactMailer) SendContact(msg ContactMessage) error {
	if err := s.sender.DialAndSend(s.BuildMessage(msg)); err != nil {
		return fmt.Errorf("send contact email: %w", err)
	}
	return nil
}
