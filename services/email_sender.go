package services

import (
	"fmt"

	"counsellor-matching/config"
	"counsellor-matching/logger"

	"gopkg.in/gomail.v2"
)

// Mailer delivers one email with optional file attachments.
type Mailer interface {
	Send(to, subject, body string, attachments ...string) error
}

// SMTPMailer sends mail directly over SMTP. The Kafka consumer calls it for
// email.send events.
type SMTPMailer struct {
	host     string
	port     int
	user     string
	password string
	from     string
}

func NewSMTPMailer(cfg config.Config) *SMTPMailer {
	from := cfg.EmailFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPass,
		from:     from,
	}
}

// Message builds the gomail message without sending it.
func (m *SMTPMailer) Message(to, subject, body string, attachments ...string) (*gomail.Message, error) {
	if m.from == "" {
		return nil, fmt.Errorf("email sender not configured (set EMAIL_FROM or SMTP_USER)")
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	for _, a := range attachments {
		if a != "" {
			msg.Attach(a)
		}
	}
	return msg, nil
}

func (m *SMTPMailer) Send(to, subject, body string, attachments ...string) error {
	msg, err := m.Message(to, subject, body, attachments...)
	if err != nil {
		return err
	}
	if m.user == "" || m.password == "" {
		return fmt.Errorf("smtp credentials not configured (set SMTP_USER and SMTP_PASS)")
	}

	d := gomail.NewDialer(m.host, m.port, m.user, m.password)
	if err := d.DialAndSend(msg); err != nil {
		logger.Error("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.Info("Email sent to %s (%s)", to, subject)
	return nil
}
