// internal/pkg/email/smtp.go
package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
)

// sendSMTPEmail delivers through the configured SMTP relay. Authentication is
// skipped when no username is configured, for local relays.
func (s *EmailService) sendSMTPEmail(email *Email) error {
	if s.config.SMTPHost == "" {
		return fmt.Errorf("SMTP configuration incomplete: missing host")
	}

	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	msg := buildMessage(s.config.FromName, s.config.FromEmail, s.config.ReplyTo, email)
	serverAddr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	if s.config.SMTPUseTLS {
		return s.sendSMTPWithTLS(serverAddr, auth, s.config.FromEmail, email.To, msg)
	}
	return smtp.SendMail(serverAddr, auth, s.config.FromEmail, email.To, msg)
}

// buildMessage renders headers and the HTML body in a fixed header order
func buildMessage(fromName, fromEmail, replyTo string, email *Email) []byte {
	from := fromEmail
	if fromName != "" {
		from = fmt.Sprintf("%s <%s>", fromName, fromEmail)
	}

	headers := [][2]string{
		{"From", from},
		{"To", strings.Join(email.To, ", ")},
		{"Subject", email.Subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", `text/html; charset="utf-8"`},
	}
	if replyTo != "" {
		headers = append(headers, [2]string{"Reply-To", replyTo})
	}

	var msg bytes.Buffer
	for _, h := range headers {
		fmt.Fprintf(&msg, "%s: %s\r\n", h[0], h[1])
	}
	msg.WriteString("\r\n")
	msg.WriteString(email.HTMLContent)
	return msg.Bytes()
}

// sendSMTPWithTLS sends over an implicit TLS connection (port 465 style)
func (s *EmailService) sendSMTPWithTLS(serverAddr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", serverAddr, &tls.Config{ServerName: s.config.SMTPHost})
	if err != nil {
		return fmt.Errorf("failed to create TLS connection: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.SMTPHost)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", addr, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to send DATA command: %w", err)
	}
	if _, err := writer.Write(msg); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write email content: %w", err)
	}
	return writer.Close()
}
