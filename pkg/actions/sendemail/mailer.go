package sendemail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends email messages. The SMTP implementation is the default;
// tests supply their own.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig configures the default SMTP mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends mail through a plain-auth SMTP relay.
type SMTPMailer struct {
	config SMTPConfig
}

func NewSMTPMailer(config SMTPConfig) *SMTPMailer {
	return &SMTPMailer{config: config}
}

func (m *SMTPMailer) Send(_ context.Context, msg Message) error {
	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)

	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	var builder strings.Builder

	builder.WriteString("From: " + m.config.From + "\r\n")
	builder.WriteString("To: " + msg.To + "\r\n")
	builder.WriteString("Subject: " + msg.Subject + "\r\n")
	builder.WriteString("MIME-Version: 1.0\r\n")
	builder.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	builder.WriteString("\r\n")
	builder.WriteString(msg.Body)

	err := smtp.SendMail(addr, auth, m.config.From, []string{msg.To}, []byte(builder.String()))
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
