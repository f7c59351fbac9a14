// Package bookings maintains the booking ledger. The defining invariant is
// at most one booking per (session, student) pair, enforced by a unique
// constraint in the schema rather than by application-level checks.
package bookings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"edusphere/internal/database"
)

var (
	// ErrAlreadyBooked is returned when the student already holds a booking
	// for the session
	ErrAlreadyBooked = errors.New("session already booked by this student")
	// ErrBookingNotFound is returned when no booking exists with the given ID
	ErrBookingNotFound = errors.New("booking not found")
)

// Repository handles database operations for bookings
type Repository struct {
	db database.Service
}

// NewRepository creates a new bookings repository
func NewRepository(db database.Service) *Repository {
	return &Repository{db: db}
}

// Create inserts a booking. The insert races against duplicates atomically:
// ON CONFLICT DO NOTHING returns no row when the (session, student) pair
// already exists, which maps to ErrAlreadyBooked.
func (r *Repository) Create(ctx context.Context, sessionID int64, studentEmail string) (*Booking, error) {
	query := `
		INSERT INTO bookings (session_id, student_email)
		VALUES ($1, $2)
		ON CONFLICT (session_id, student_email) DO NOTHING
		RETURNING booking_id, session_id, student_email, created_at`

	var booking Booking
	err := r.db.QueryRow(ctx, query, sessionID, studentEmail).Scan(
		&booking.ID, &booking.SessionID, &booking.StudentEmail, &booking.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlreadyBooked
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	return &booking, nil
}

// GetByID retrieves a booking by ID
func (r *Repository) GetByID(ctx context.Context, bookingID int64) (*Booking, error) {
	query := `
		SELECT booking_id, session_id, student_email, created_at
		FROM bookings
		WHERE booking_id = $1`

	var booking Booking
	err := r.db.QueryRow(ctx, query, bookingID).Scan(
		&booking.ID, &booking.SessionID, &booking.StudentEmail, &booking.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return &booking, nil
}

// ListByStudent returns a student's bookings joined with session details,
// newest first
func (r *Repository) ListByStudent(ctx context.Context, studentEmail string) ([]BookingDetail, error) {
	query := `
		SELECT b.booking_id, b.session_id, b.student_email, b.created_at,
		       s.title, s.tutor_email, s.price
		FROM bookings b
		JOIN study_sessions s ON s.session_id = b.session_id
		WHERE b.student_email = $1
		ORDER BY b.created_at DESC`

	rows, err := r.db.Query(ctx, query, studentEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	return scanBookingDetails(rows)
}

// ListBySession returns all bookings for a session, newest first
func (r *Repository) ListBySession(ctx context.Context, sessionID int64) ([]Booking, error) {
	query := `
		SELECT booking_id, session_id, student_email, created_at
		FROM bookings
		WHERE session_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session bookings: %w", err)
	}
	defer rows.Close()

	bookings := []Booking{}
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ID, &b.SessionID, &b.StudentEmail, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}

// Delete removes a booking by ID
func (r *Repository) Delete(ctx context.Context, bookingID int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE booking_id = $1`, bookingID)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func scanBookingDetails(rows *sql.Rows) ([]BookingDetail, error) {
	details := []BookingDetail{}
	for rows.Next() {
		var d BookingDetail
		err := rows.Scan(&d.ID, &d.SessionID, &d.StudentEmail, &d.CreatedAt,
			&d.SessionTitle, &d.TutorEmail, &d.Price)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking detail: %w", err)
		}
		details = append(details, d)
	}

	return details, rows.Err()
}
