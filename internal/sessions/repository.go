package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"edusphere/internal/database"
)

var (
	// ErrSessionNotFound is returned when no session exists for an id
	ErrSessionNotFound = errors.New("session not found")
	// ErrStatusChanged is returned when the expected prior status no longer
	// matches at update time (concurrent moderation)
	ErrStatusChanged = errors.New("session status changed concurrently")
)

// Repository handles all database operations for study sessions
type Repository struct {
	db database.Service
}

// NewRepository creates a new sessions repository
func NewRepository(db database.Service) *Repository {
	return &Repository{db: db}
}

// Create inserts a new session. Status is always pending on creation; there
// is no way to create a session in any other state.
func (r *Repository) Create(ctx context.Context, tutorEmail string, req CreateSessionRequest) (*Session, error) {
	const q = `
		INSERT INTO study_sessions (tutor_email, title, description, price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING session_id, tutor_email, title, description, price, status, created_at, updated_at
	`

	s := &Session{}
	err := r.db.QueryRow(ctx, q, tutorEmail, req.Title, req.Description, req.Price, StatusPending).Scan(
		&s.ID, &s.TutorEmail, &s.Title, &s.Description, &s.Price, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s, nil
}

// GetByID retrieves a single session by ID
func (r *Repository) GetByID(ctx context.Context, sessionID int64) (*Session, error) {
	const q = `
		SELECT session_id, tutor_email, title, description, price, status, created_at, updated_at
		FROM study_sessions
		WHERE session_id = $1
	`

	s := &Session{}
	err := r.db.QueryRow(ctx, q, sessionID).Scan(
		&s.ID, &s.TutorEmail, &s.Title, &s.Description, &s.Price, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return s, nil
}

// List retrieves sessions with pagination, optionally filtered by status
func (r *Repository) List(ctx context.Context, status Status, page, pageSize int) ([]Session, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	// An empty status means no filter; the $1 = '' guard keeps it one query
	var totalCount int64
	const countQuery = `SELECT COUNT(*) FROM study_sessions WHERE ($1 = '' OR status = $1)`
	if err := r.db.QueryRow(ctx, countQuery, string(status)).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	const q = `
		SELECT session_id, tutor_email, title, description, price, status, created_at, updated_at
		FROM study_sessions
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, q, string(status), pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions, err := scanSessions(rows)
	if err != nil {
		return nil, 0, err
	}

	return sessions, totalCount, nil
}

// ListByTutor retrieves all sessions published by a tutor
func (r *Repository) ListByTutor(ctx context.Context, tutorEmail string) ([]Session, error) {
	const q = `
		SELECT session_id, tutor_email, title, description, price, status, created_at, updated_at
		FROM study_sessions
		WHERE tutor_email = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, q, tutorEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to list tutor sessions: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

// UpdateStatus atomically moves a session from an expected prior status to a
// new one. The WHERE clause carries the expected status so two concurrent
// moderation requests cannot both win.
func (r *Repository) UpdateStatus(ctx context.Context, sessionID int64, from, to Status) (*Session, error) {
	const q = `
		UPDATE study_sessions
		SET status = $1, updated_at = NOW()
		WHERE session_id = $2 AND status = $3
		RETURNING session_id, tutor_email, title, description, price, status, created_at, updated_at
	`

	s := &Session{}
	err := r.db.QueryRow(ctx, q, to, sessionID, from).Scan(
		&s.ID, &s.TutorEmail, &s.Title, &s.Description, &s.Price, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		// Either the session vanished or its status moved under us
		if _, getErr := r.GetByID(ctx, sessionID); getErr != nil {
			return nil, getErr
		}
		return nil, ErrStatusChanged
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update session status: %w", err)
	}

	return s, nil
}

// Delete removes a session unconditionally, regardless of status
func (r *Repository) Delete(ctx context.Context, sessionID int64) error {
	const q = `DELETE FROM study_sessions WHERE session_id = $1`

	res, err := r.db.Exec(ctx, q, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

func scanSessions(rows *sql.Rows) ([]Session, error) {
	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.TutorEmail, &s.Title, &s.Description, &s.Price, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}
	return sessions, nil
}
