// Package email provides booking and moderation notifications.
// The API service publishes email events to Kafka; the notifier service
// consumes them and sends mail in development mode (log-only) or via SMTP.
package email

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strconv"
)

// Sender defines the interface for sending emails
type Sender interface {
	SendEmailEvent(event EmailEvent) error
}

// Config holds email configuration
type Config struct {
	Mode     string // "log" or "smtp"
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

// NewConfig creates a new email configuration from environment variables
func NewConfig() *Config {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))

	return &Config{
		Mode:     getEnvOrDefault("EMAIL_MODE", "log"),
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		User:     os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     getEnvOrDefault("SMTP_FROM", "noreply@edusphere.app"),
		FromName: getEnvOrDefault("SMTP_FROM_NAME", "eduSphere"),
	}
}

// NewSender creates a new email sender based on configuration
func NewSender(cfg *Config) Sender {
	if cfg.Mode == "smtp" {
		return &smtpSender{config: cfg}
	}
	return &logSender{}
}

// logSender logs emails to console (development mode)
type logSender struct{}

func (s *logSender) SendEmailEvent(event EmailEvent) error {
	subject, body := renderEmail(event)
	log.Printf("[DEV] Email to %s: subject=%q body=%q", event.Recipient, subject, body)
	return nil
}

// smtpSender sends emails via SMTP (production mode)
type smtpSender struct {
	config *Config
}

func (s *smtpSender) SendEmailEvent(event EmailEvent) error {
	subject, body := renderEmail(event)

	message := fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.From)
	message += fmt.Sprintf("To: %s\r\n", event.Recipient)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += "MIME-Version: 1.0\r\n"
	message += "Content-Type: text/plain; charset=UTF-8\r\n"
	message += "\r\n"
	message += body

	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	if err := smtp.SendMail(addr, auth, s.config.From, []string{event.Recipient}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("Sent %s email to %s via SMTP", event.EventType, event.Recipient)
	return nil
}

// renderEmail builds subject and body for an event type
func renderEmail(event EmailEvent) (subject, body string) {
	title, _ := event.Data["session_title"].(string)

	switch event.EventType {
	case EmailTypeBookingConfirmed:
		tutor, _ := event.Data["tutor_email"].(string)
		return "Booking confirmed",
			fmt.Sprintf("Your booking for %q with %s is confirmed. See you in class!", title, tutor)
	case EmailTypeSessionApproved:
		return "Your study session was approved",
			fmt.Sprintf("Good news! Your study session %q is now visible to students.", title)
	case EmailTypeSessionRejected:
		return "Your study session was rejected",
			fmt.Sprintf("Your study session %q did not pass moderation. Please review our guidelines and resubmit a new session.", title)
	default:
		return "eduSphere notification", fmt.Sprintf("Event: %s", event.EventType)
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
