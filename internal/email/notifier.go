package email

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Publisher abstracts the Kafka producer so domain services can be tested
// without a broker
type Publisher interface {
	PublishEmailEvent(topic string, event any) error
}

// Notifier builds domain email events and publishes them. A nil Notifier is
// safe to call; notifications are best-effort and never fail the request
// that triggered them.
type Notifier struct {
	publisher Publisher
	topic     string
	logger    *slog.Logger
}

// NewNotifier creates a Notifier publishing to the given topic
func NewNotifier(publisher Publisher, topic string, logger *slog.Logger) *Notifier {
	return &Notifier{
		publisher: publisher,
		topic:     topic,
		logger:    logger,
	}
}

// BookingConfirmed notifies a student that their booking was recorded
func (n *Notifier) BookingConfirmed(studentEmail, sessionTitle, tutorEmail string) {
	n.publish(EmailEvent{
		MessageID: uuid.NewString(),
		EventType: EmailTypeBookingConfirmed,
		Timestamp: time.Now(),
		Recipient: studentEmail,
		Data: map[string]any{
			"session_title": sessionTitle,
			"tutor_email":   tutorEmail,
		},
	})
}

// SessionModerated notifies a tutor about an approval or rejection
func (n *Notifier) SessionModerated(tutorEmail, sessionTitle string, approved bool) {
	eventType := EmailTypeSessionRejected
	if approved {
		eventType = EmailTypeSessionApproved
	}

	n.publish(EmailEvent{
		MessageID: uuid.NewString(),
		EventType: eventType,
		Timestamp: time.Now(),
		Recipient: tutorEmail,
		Data: map[string]any{
			"session_title": sessionTitle,
		},
	})
}

func (n *Notifier) publish(event EmailEvent) {
	if n == nil || n.publisher == nil {
		return
	}
	if err := n.publisher.PublishEmailEvent(n.topic, event); err != nil {
		n.logger.Warn("Failed to publish email event",
			"type", string(event.EventType),
			"recipient", event.Recipient,
			"error", err.Error())
	}
}
