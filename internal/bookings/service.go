package bookings

import (
	"context"
	"errors"
	"log/slog"

	"edusphere/internal/email"
	"edusphere/internal/sessions"
	"edusphere/internal/users"
)

var (
	// ErrSessionNotBookable is returned when the session exists but has not
	// been approved for booking
	ErrSessionNotBookable = errors.New("session is not open for booking")
	// ErrNotBookingOwner is returned when a caller tries to cancel a booking
	// held by another student
	ErrNotBookingOwner = errors.New("booking belongs to another student")
)

// repository abstracts persistence for the service
type repository interface {
	Create(ctx context.Context, sessionID int64, studentEmail string) (*Booking, error)
	GetByID(ctx context.Context, bookingID int64) (*Booking, error)
	ListByStudent(ctx context.Context, studentEmail string) ([]BookingDetail, error)
	ListBySession(ctx context.Context, sessionID int64) ([]Booking, error)
	Delete(ctx context.Context, bookingID int64) error
}

// sessionGetter resolves sessions so bookings can check approval status
type sessionGetter interface {
	Get(ctx context.Context, sessionID int64) (*sessions.Session, error)
}

// Service handles business logic for the booking ledger
type Service struct {
	repo     repository
	sessions sessionGetter
	notifier *email.Notifier
	logger   *slog.Logger
}

// NewService creates a new bookings service. notifier may be nil.
func NewService(repo repository, sessionSvc sessionGetter, notifier *email.Notifier, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		sessions: sessionSvc,
		notifier: notifier,
		logger:   logger,
	}
}

// Book records a seat for the student in an approved session. The duplicate
// check is left entirely to the insert so two concurrent requests for the
// same pair resolve to exactly one booking.
func (s *Service) Book(ctx context.Context, studentEmail string, sessionID int64) (*Booking, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status != sessions.StatusApproved {
		return nil, ErrSessionNotBookable
	}

	booking, err := s.repo.Create(ctx, sessionID, studentEmail)
	if err != nil {
		return nil, err
	}

	s.notifier.BookingConfirmed(studentEmail, session.Title, session.TutorEmail)

	s.logger.Info("Booking created",
		"booking_id", booking.ID,
		"session_id", sessionID,
		"student", studentEmail)

	return booking, nil
}

// ListForStudent returns the caller's bookings with session details
func (s *Service) ListForStudent(ctx context.Context, studentEmail string) ([]BookingDetail, error) {
	return s.repo.ListByStudent(ctx, studentEmail)
}

// ListForSession returns all bookings for a session
func (s *Service) ListForSession(ctx context.Context, sessionID int64) ([]Booking, error) {
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.repo.ListBySession(ctx, sessionID)
}

// Cancel removes a booking. Students may only cancel their own bookings;
// admins may cancel any.
func (s *Service) Cancel(ctx context.Context, bookingID int64, requesterEmail string, requesterRole users.Role) error {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if booking.StudentEmail != requesterEmail && requesterRole != users.RoleAdmin {
		return ErrNotBookingOwner
	}

	return s.repo.Delete(ctx, bookingID)
}
