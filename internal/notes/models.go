package notes

import "time"

// Note is a private study note. Ownership is enforced in SQL; every query
// filters by owner_email.
type Note struct {
	ID         int64     `json:"note_id"`
	OwnerEmail string    `json:"owner_email"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateNoteRequest is the payload for creating a note
type CreateNoteRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body"`
}

// UpdateNoteRequest is the payload for updating a note
type UpdateNoteRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body"`
}
