package mailer

import (
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/membercircle/compliments/internal/config"
)

// Message is a plain-text outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends notification emails. Tests and dev environments swap in
// non-delivering implementations.
type Mailer interface {
	Send(m Message) error
}

// NewFromConfig picks SMTP when a host is configured, otherwise a
// log-only mailer so local runs never try to deliver.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) Mailer {
	if cfg.SMTP.Host == "" {
		return &LogMailer{Logger: logger}
	}
	return &SMTPMailer{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		From:     cfg.SMTP.From,
		Password: cfg.SMTP.Password,
	}
}

// SMTPMailer delivers over SMTP with plain auth.
type SMTPMailer struct {
	Host     string
	Port     string
	From     string
	Password string
}

func (s *SMTPMailer) Send(m Message) error {
	msg := []byte(fmt.Sprintf(
		"To: %s\r\nFrom: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		m.To, s.From, m.Subject, m.Body,
	))
	auth := smtp.PlainAuth("", s.From, s.Password, s.Host)
	return smtp.SendMail(s.Host+":"+s.Port, auth, s.From, []string{m.To}, msg)
}

// LogMailer records the send in the log instead of delivering.
type LogMailer struct {
	Logger *slog.Logger
}

func (l *LogMailer) Send(m Message) error {
	l.Logger.Info("email suppressed (no SMTP host configured)", "to", m.To, "subject", m.Subject)
	return nil
}
