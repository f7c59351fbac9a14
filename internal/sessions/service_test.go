package sessions

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"edusphere/internal/email"
)

type fakeRepo struct {
	sessions map[int64]*Session
	updated  []Status
	onGet    func()
}

func (f *fakeRepo) Create(_ context.Context, tutorEmail string, req CreateSessionRequest) (*Session, error) {
	s := &Session{
		ID:         int64(len(f.sessions) + 1),
		TutorEmail: tutorEmail,
		Title:      req.Title,
		Status:     StatusPending,
	}
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *s
	if f.onGet != nil {
		f.onGet()
	}
	return &copied, nil
}

func (f *fakeRepo) List(context.Context, Status, int, int) ([]Session, int64, error) {
	return nil, 0, nil
}

func (f *fakeRepo) ListByTutor(context.Context, string) ([]Session, error) {
	return nil, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id int64, from, to Status) (*Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.Status != from {
		return nil, ErrStatusChanged
	}
	s.Status = to
	f.updated = append(f.updated, to)
	copied := *s
	return &copied, nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(f.sessions, id)
	return nil
}

type capturingPublisher struct {
	events []email.EmailEvent
}

func (p *capturingPublisher) PublishEmailEvent(_ string, event any) error {
	p.events = append(p.events, event.(email.EmailEvent))
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(repo *fakeRepo, publisher email.Publisher) *Service {
	var notifier *email.Notifier
	if publisher != nil {
		notifier = email.NewNotifier(publisher, "email-events", testLogger())
	}
	return NewService(repo, nil, notifier, testLogger())
}

func TestCreateStartsPending(t *testing.T) {
	repo := &fakeRepo{sessions: map[int64]*Session{}}
	svc := newTestService(repo, nil)

	s, err := svc.Create(context.Background(), "tutor@example.com", CreateSessionRequest{Title: "Algebra"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if s.Status != StatusPending {
		t.Errorf("new session must start pending, got %s", s.Status)
	}
}

func TestSetStatusApprove(t *testing.T) {
	repo := &fakeRepo{sessions: map[int64]*Session{
		1: {ID: 1, TutorEmail: "tutor@example.com", Title: "Algebra", Status: StatusPending},
	}}
	publisher := &capturingPublisher{}
	svc := newTestService(repo, publisher)

	s, err := svc.SetStatus(context.Background(), 1, StatusApproved)
	if err != nil {
		t.Fatalf("SetStatus returned error: %v", err)
	}
	if s.Status != StatusApproved {
		t.Errorf("expected approved, got %s", s.Status)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("expected one notification, got %d", len(publisher.events))
	}
	ev := publisher.events[0]
	if ev.EventType != email.EmailTypeSessionApproved {
		t.Errorf("expected approval event, got %s", ev.EventType)
	}
	if ev.Recipient != "tutor@example.com" {
		t.Errorf("notification must go to the tutor, got %s", ev.Recipient)
	}
}

func TestSetStatusRejectedThenApproved(t *testing.T) {
	repo := &fakeRepo{sessions: map[int64]*Session{
		1: {ID: 1, TutorEmail: "tutor@example.com", Status: StatusRejected},
	}}
	svc := newTestService(repo, nil)

	s, err := svc.SetStatus(context.Background(), 1, StatusApproved)
	if err != nil {
		t.Fatalf("rejected -> approved should be allowed: %v", err)
	}
	if s.Status != StatusApproved {
		t.Errorf("expected approved, got %s", s.Status)
	}
}

func TestSetStatusBackToPendingRejected(t *testing.T) {
	repo := &fakeRepo{sessions: map[int64]*Session{
		1: {ID: 1, TutorEmail: "tutor@example.com", Status: StatusApproved},
	}}
	svc := newTestService(repo, nil)

	if _, err := svc.SetStatus(context.Background(), 1, StatusPending); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition going back to pending, got %v", err)
	}
}

func TestSetStatusUnknownValue(t *testing.T) {
	repo := &fakeRepo{sessions: map[int64]*Session{}}
	svc := newTestService(repo, nil)

	if _, err := svc.SetStatus(context.Background(), 1, "archived"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestSetStatusMissingSession(t *testing.T) {
	repo := &fakeRepo{sessions: map[int64]*Session{}}
	svc := newTestService(repo, nil)

	if _, err := svc.SetStatus(context.Background(), 99, StatusApproved); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSetStatusLostRace(t *testing.T) {
	repo := &fakeRepo{sessions: map[int64]*Session{
		1: {ID: 1, TutorEmail: "tutor@example.com", Status: StatusPending},
	}}
	// A concurrent moderator commits a decision between this caller's read
	// and its conditional update
	repo.onGet = func() {
		repo.sessions[1].Status = StatusRejected
		repo.onGet = nil
	}
	svc := newTestService(repo, nil)

	if _, err := svc.SetStatus(context.Background(), 1, StatusApproved); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition when the race is lost, got %v", err)
	}
}

func TestListRejectsUnknownStatusFilter(t *testing.T) {
	repo := &fakeRepo{sessions: map[int64]*Session{}}
	svc := newTestService(repo, nil)

	if _, err := svc.List(context.Background(), "archived", 1, 10); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}
