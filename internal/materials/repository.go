package materials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"edusphere/internal/database"
)

// ErrMaterialNotFound is returned when no material exists with the given ID
var ErrMaterialNotFound = errors.New("material not found")

// Repository handles database operations for study materials
type Repository struct {
	db database.Service
}

// NewRepository creates a new materials repository
func NewRepository(db database.Service) *Repository {
	return &Repository{db: db}
}

// Create inserts material metadata for a session
func (r *Repository) Create(ctx context.Context, sessionID int64, tutorEmail string, req CreateMaterialRequest) (*Material, error) {
	query := `
		INSERT INTO materials (session_id, tutor_email, title, file_key, link)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING material_id, session_id, tutor_email, title, file_key, link, created_at`

	var m Material
	err := r.db.QueryRow(ctx, query, sessionID, tutorEmail, req.Title, req.FileKey, req.Link).Scan(
		&m.ID, &m.SessionID, &m.TutorEmail, &m.Title, &m.FileKey, &m.Link, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}

	return &m, nil
}

// GetByID retrieves a material by ID
func (r *Repository) GetByID(ctx context.Context, materialID int64) (*Material, error) {
	query := `
		SELECT material_id, session_id, tutor_email, title, file_key, link, created_at
		FROM materials
		WHERE material_id = $1`

	var m Material
	err := r.db.QueryRow(ctx, query, materialID).Scan(
		&m.ID, &m.SessionID, &m.TutorEmail, &m.Title, &m.FileKey, &m.Link, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("failed to get material: %w", err)
	}

	return &m, nil
}

// ListBySession returns all materials for a session, newest first
func (r *Repository) ListBySession(ctx context.Context, sessionID int64) ([]Material, error) {
	query := `
		SELECT material_id, session_id, tutor_email, title, file_key, link, created_at
		FROM materials
		WHERE session_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	defer rows.Close()

	materials := []Material{}
	for rows.Next() {
		var m Material
		err := rows.Scan(&m.ID, &m.SessionID, &m.TutorEmail, &m.Title, &m.FileKey, &m.Link, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		materials = append(materials, m)
	}

	return materials, rows.Err()
}

// Delete removes material metadata by ID
func (r *Repository) Delete(ctx context.Context, materialID int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM materials WHERE material_id = $1`, materialID)
	if err != nil {
		return fmt.Errorf("failed to delete material: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrMaterialNotFound
	}

	return nil
}
