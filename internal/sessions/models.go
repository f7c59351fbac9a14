package sessions

import "time"

// Status is a study session's moderation state
type Status string

const (
	// StatusPending is the initial state of every created session
	StatusPending Status = "pending"
	// StatusApproved means an admin accepted the session; it is bookable
	StatusApproved Status = "approved"
	// StatusRejected means an admin declined the session
	StatusRejected Status = "rejected"
)

// IsValid reports whether the status is one of the known values
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

func (s Status) String() string {
	return string(s)
}

// allowedTransitions is the explicit moderation state machine. An admin may
// flip a moderated session between approved and rejected to correct a
// mistake, but nothing ever goes back to pending: re-review is not modeled.
var allowedTransitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusRejected},
	StatusRejected: {StatusApproved},
}

// CanTransitionTo reports whether next is reachable from s
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range allowedTransitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

// Session is a tutor-published study offering with a moderation status.
// Not a network session.
type Session struct {
	ID          int64     `json:"id"`
	TutorEmail  string    `json:"tutor_email"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateSessionRequest is the request payload for creating a session
type CreateSessionRequest struct {
	Title       string  `json:"title" binding:"required,min=1,max=200"`
	Description string  `json:"description" binding:"max=2000"`
	Price       float64 `json:"price" binding:"gte=0"`
}

// UpdateStatusRequest is the request payload for an admin status change
type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

// PaginatedSessionsResponse wraps a page of sessions with the total count
type PaginatedSessionsResponse struct {
	Sessions   []Session `json:"sessions"`
	TotalCount int64     `json:"total_count"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
}
