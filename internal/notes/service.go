// Package notes implements owner-scoped personal study notes.
package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"edusphere/internal/database"
)

// ErrNoteNotFound is returned when the note does not exist or belongs to
// another user; the two cases are indistinguishable on purpose
var ErrNoteNotFound = errors.New("note not found")

// Service defines note operations
type Service interface {
	Create(ctx context.Context, ownerEmail string, req CreateNoteRequest) (*Note, error)
	Get(ctx context.Context, ownerEmail string, noteID int64) (*Note, error)
	List(ctx context.Context, ownerEmail string) ([]Note, error)
	Update(ctx context.Context, ownerEmail string, noteID int64, req UpdateNoteRequest) (*Note, error)
	Delete(ctx context.Context, ownerEmail string, noteID int64) error
}

type service struct {
	db database.Service
}

// NewService creates a new notes service
func NewService(db database.Service) Service {
	return &service{db: db}
}

func (s *service) Create(ctx context.Context, ownerEmail string, req CreateNoteRequest) (*Note, error) {
	const q = `
		INSERT INTO notes (owner_email, title, body)
		VALUES ($1, $2, $3)
		RETURNING note_id, created_at, updated_at`

	n := &Note{
		OwnerEmail: ownerEmail,
		Title:      req.Title,
		Body:       req.Body,
	}

	err := s.db.QueryRow(ctx, q, ownerEmail, req.Title, req.Body).
		Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}

	return n, nil
}

func (s *service) Get(ctx context.Context, ownerEmail string, noteID int64) (*Note, error) {
	const q = `
		SELECT note_id, owner_email, title, body, created_at, updated_at
		FROM notes
		WHERE note_id = $1 AND owner_email = $2`

	var n Note
	err := s.db.QueryRow(ctx, q, noteID, ownerEmail).
		Scan(&n.ID, &n.OwnerEmail, &n.Title, &n.Body, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("get note: %w", err)
	}

	return &n, nil
}

func (s *service) List(ctx context.Context, ownerEmail string) ([]Note, error) {
	const q = `
		SELECT note_id, owner_email, title, body, created_at, updated_at
		FROM notes
		WHERE owner_email = $1
		ORDER BY updated_at DESC`

	rows, err := s.db.Query(ctx, q, ownerEmail)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	out := []Note{}
	for rows.Next() {
		var n Note
		if err := rows.Scan(
			&n.ID, &n.OwnerEmail, &n.Title, &n.Body, &n.CreatedAt, &n.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		out = append(out, n)
	}

	return out, rows.Err()
}

func (s *service) Update(ctx context.Context, ownerEmail string, noteID int64, req UpdateNoteRequest) (*Note, error) {
	const q = `
		UPDATE notes
		SET title = $1, body = $2, updated_at = NOW()
		WHERE note_id = $3 AND owner_email = $4
		RETURNING created_at, updated_at`

	n := &Note{
		ID:         noteID,
		OwnerEmail: ownerEmail,
		Title:      req.Title,
		Body:       req.Body,
	}

	err := s.db.QueryRow(ctx, q, req.Title, req.Body, noteID, ownerEmail).
		Scan(&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("update note: %w", err)
	}

	return n, nil
}

func (s *service) Delete(ctx context.Context, ownerEmail string, noteID int64) error {
	const q = `DELETE FROM notes WHERE note_id = $1 AND owner_email = $2`

	result, err := s.db.Exec(ctx, q, noteID, ownerEmail)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete note result: %w", err)
	}
	if affected == 0 {
		return ErrNoteNotFound
	}

	return nil
}
