package bookings

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"edusphere/internal/email"
	"edusphere/internal/sessions"
	"edusphere/internal/users"
)

type fakeRepo struct {
	bookings map[int64]*Booking
	nextID   int64
}

func (f *fakeRepo) Create(_ context.Context, sessionID int64, studentEmail string) (*Booking, error) {
	for _, b := range f.bookings {
		if b.SessionID == sessionID && b.StudentEmail == studentEmail {
			return nil, ErrAlreadyBooked
		}
	}
	f.nextID++
	b := &Booking{ID: f.nextID, SessionID: sessionID, StudentEmail: studentEmail}
	f.bookings[b.ID] = b
	return b, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeRepo) ListByStudent(context.Context, string) ([]BookingDetail, error) {
	return nil, nil
}

func (f *fakeRepo) ListBySession(context.Context, int64) ([]Booking, error) {
	return nil, nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.bookings[id]; !ok {
		return ErrBookingNotFound
	}
	delete(f.bookings, id)
	return nil
}

type fakeSessions struct {
	sessions map[int64]*sessions.Session
}

func (f *fakeSessions) Get(_ context.Context, id int64) (*sessions.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, sessions.ErrSessionNotFound
	}
	return s, nil
}

type capturingPublisher struct {
	events []email.EmailEvent
}

func (p *capturingPublisher) PublishEmailEvent(_ string, event any) error {
	p.events = append(p.events, event.(email.EmailEvent))
	return nil
}

func newTestService(repo *fakeRepo, catalog *fakeSessions, publisher email.Publisher) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var notifier *email.Notifier
	if publisher != nil {
		notifier = email.NewNotifier(publisher, "email-events", logger)
	}
	return NewService(repo, catalog, notifier, logger)
}

func approvedCatalog() *fakeSessions {
	return &fakeSessions{sessions: map[int64]*sessions.Session{
		1: {ID: 1, TutorEmail: "tutor@example.com", Title: "Algebra", Status: sessions.StatusApproved},
		2: {ID: 2, TutorEmail: "tutor@example.com", Title: "Drafts", Status: sessions.StatusPending},
	}}
}

func TestBookApprovedSession(t *testing.T) {
	repo := &fakeRepo{bookings: map[int64]*Booking{}}
	publisher := &capturingPublisher{}
	svc := newTestService(repo, approvedCatalog(), publisher)

	b, err := svc.Book(context.Background(), "student@example.com", 1)
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}
	if b.SessionID != 1 || b.StudentEmail != "student@example.com" {
		t.Errorf("unexpected booking: %+v", b)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("expected one notification, got %d", len(publisher.events))
	}
	if publisher.events[0].EventType != email.EmailTypeBookingConfirmed {
		t.Errorf("expected booking confirmation, got %s", publisher.events[0].EventType)
	}
	if publisher.events[0].Recipient != "student@example.com" {
		t.Errorf("confirmation must go to the student, got %s", publisher.events[0].Recipient)
	}
}

func TestBookPendingSession(t *testing.T) {
	repo := &fakeRepo{bookings: map[int64]*Booking{}}
	svc := newTestService(repo, approvedCatalog(), nil)

	if _, err := svc.Book(context.Background(), "student@example.com", 2); !errors.Is(err, ErrSessionNotBookable) {
		t.Errorf("expected ErrSessionNotBookable for pending session, got %v", err)
	}
	if len(repo.bookings) != 0 {
		t.Errorf("no booking row should exist, found %d", len(repo.bookings))
	}
}

func TestBookMissingSession(t *testing.T) {
	repo := &fakeRepo{bookings: map[int64]*Booking{}}
	svc := newTestService(repo, approvedCatalog(), nil)

	if _, err := svc.Book(context.Background(), "student@example.com", 99); !errors.Is(err, sessions.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestBookTwice(t *testing.T) {
	repo := &fakeRepo{bookings: map[int64]*Booking{}}
	svc := newTestService(repo, approvedCatalog(), nil)

	if _, err := svc.Book(context.Background(), "student@example.com", 1); err != nil {
		t.Fatalf("first booking should succeed: %v", err)
	}
	if _, err := svc.Book(context.Background(), "student@example.com", 1); !errors.Is(err, ErrAlreadyBooked) {
		t.Errorf("expected ErrAlreadyBooked, got %v", err)
	}
	if len(repo.bookings) != 1 {
		t.Errorf("exactly one booking must exist, found %d", len(repo.bookings))
	}
}

func TestCancelOwnBooking(t *testing.T) {
	repo := &fakeRepo{bookings: map[int64]*Booking{
		7: {ID: 7, SessionID: 1, StudentEmail: "student@example.com"},
	}}
	svc := newTestService(repo, approvedCatalog(), nil)

	if err := svc.Cancel(context.Background(), 7, "student@example.com", users.RoleStudent); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if len(repo.bookings) != 0 {
		t.Errorf("booking should be removed")
	}
}

func TestCancelForeignBooking(t *testing.T) {
	repo := &fakeRepo{bookings: map[int64]*Booking{
		7: {ID: 7, SessionID: 1, StudentEmail: "student@example.com"},
	}}
	svc := newTestService(repo, approvedCatalog(), nil)

	err := svc.Cancel(context.Background(), 7, "other@example.com", users.RoleStudent)
	if !errors.Is(err, ErrNotBookingOwner) {
		t.Errorf("expected ErrNotBookingOwner, got %v", err)
	}

	if err := svc.Cancel(context.Background(), 7, "admin@example.com", users.RoleAdmin); err != nil {
		t.Errorf("admin cancel should succeed: %v", err)
	}
}
