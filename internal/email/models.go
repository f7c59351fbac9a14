package email

import "time"

// EmailEventType represents the type of email to be sent
type EmailEventType string

const (
	// EmailTypeBookingConfirmed notifies a student their booking was recorded
	EmailTypeBookingConfirmed EmailEventType = "booking_confirmed"
	// EmailTypeSessionApproved notifies a tutor their session passed moderation
	EmailTypeSessionApproved EmailEventType = "session_approved"
	// EmailTypeSessionRejected notifies a tutor their session was rejected
	EmailTypeSessionRejected EmailEventType = "session_rejected"
)

// EmailEvent represents an email event published to Kafka
type EmailEvent struct {
	// MessageID is a unique identifier for this event (UUID v4), used for
	// deduplication so redelivery never sends the same email twice
	MessageID string `json:"message_id"`

	// EventType specifies what kind of email to send
	EventType EmailEventType `json:"event_type"`

	// Timestamp when the event was created
	Timestamp time.Time `json:"timestamp"`

	// Recipient is the email address to send to
	Recipient string `json:"recipient"`

	// Data contains type-specific template values
	// For booking_confirmed: {"session_title": "...", "tutor_email": "..."}
	// For session_approved/rejected: {"session_title": "..."}
	Data map[string]any `json:"data"`
}

// EmailMetadata is stored in Redis alongside a processed message ID
type EmailMetadata struct {
	SentAt    time.Time      `json:"sent_at"`
	Recipient string         `json:"recipient"`
	EventType EmailEventType `json:"event_type"`
}
