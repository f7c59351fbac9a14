// Package sessions implements the study session approval lifecycle: tutors
// publish sessions, admins moderate them through an explicit transition
// table, students browse the approved catalog.
package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"edusphere/internal/cache"
	"edusphere/internal/email"
)

const cacheTTL = 5 * time.Minute

var (
	// ErrInvalidStatus is returned for unknown status values
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidTransition is returned when the requested status is not
	// reachable from the session's current status
	ErrInvalidTransition = errors.New("status transition not allowed")
)

// repository abstracts persistence for the service
type repository interface {
	Create(ctx context.Context, tutorEmail string, req CreateSessionRequest) (*Session, error)
	GetByID(ctx context.Context, sessionID int64) (*Session, error)
	List(ctx context.Context, status Status, page, pageSize int) ([]Session, int64, error)
	ListByTutor(ctx context.Context, tutorEmail string) ([]Session, error)
	UpdateStatus(ctx context.Context, sessionID int64, from, to Status) (*Session, error)
	Delete(ctx context.Context, sessionID int64) error
}

// Service handles business logic for study sessions with read caching
type Service struct {
	repo     repository
	cache    cache.Store
	notifier *email.Notifier
	logger   *slog.Logger
}

// NewService creates a new sessions service. cache and notifier may be nil;
// both degrade to direct reads and no notifications.
func NewService(repo repository, store cache.Store, notifier *email.Notifier, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// Create publishes a new session in the pending state. Role enforcement
// (tutor only) happens upstream at the route guard.
func (s *Service) Create(ctx context.Context, tutorEmail string, req CreateSessionRequest) (*Session, error) {
	session, err := s.repo.Create(ctx, tutorEmail, req)
	if err != nil {
		return nil, err
	}

	s.invalidateListCaches(ctx)

	return session, nil
}

// Get retrieves a session by ID with caching
func (s *Service) Get(ctx context.Context, sessionID int64) (*Session, error) {
	cacheKey := fmt.Sprintf("studysession:%d", sessionID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			var session Session
			if err := json.Unmarshal([]byte(cached), &session); err == nil {
				return &session, nil
			}
		}
	}

	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(session); err == nil {
			_ = s.cache.Set(ctx, cacheKey, string(data), cacheTTL)
		}
	}

	return session, nil
}

// List returns a page of sessions with caching, optionally filtered by status
func (s *Service) List(ctx context.Context, status Status, page, pageSize int) (*PaginatedSessionsResponse, error) {
	if status != "" && !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	cacheKey := fmt.Sprintf("studysessions:%s:page:%d:size:%d", status, page, pageSize)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			var resp PaginatedSessionsResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return &resp, nil
			}
		}
	}

	sessions, totalCount, err := s.repo.List(ctx, status, page, pageSize)
	if err != nil {
		return nil, err
	}

	resp := &PaginatedSessionsResponse{
		Sessions:   sessions,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}

	if s.cache != nil {
		if data, err := json.Marshal(resp); err == nil {
			_ = s.cache.Set(ctx, cacheKey, string(data), cacheTTL)
		}
	}

	return resp, nil
}

// ListByTutor returns all sessions published by a tutor, uncached
func (s *Service) ListByTutor(ctx context.Context, tutorEmail string) ([]Session, error) {
	return s.repo.ListByTutor(ctx, tutorEmail)
}

// SetStatus applies an admin moderation decision. The new status must be
// reachable from the current one per the transition table, and the update
// itself is conditional on that current status so concurrent decisions
// cannot both apply.
func (s *Service) SetStatus(ctx context.Context, sessionID int64, newStatus Status) (*Session, error) {
	if !newStatus.IsValid() {
		return nil, ErrInvalidStatus
	}

	current, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !current.Status.CanTransitionTo(newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, newStatus)
	}

	session, err := s.repo.UpdateStatus(ctx, sessionID, current.Status, newStatus)
	if err != nil {
		if errors.Is(err, ErrStatusChanged) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, newStatus)
		}
		return nil, err
	}

	s.invalidate(ctx, sessionID)

	s.notifier.SessionModerated(session.TutorEmail, session.Title, session.Status == StatusApproved)

	s.logger.Info("Session status updated",
		"session_id", sessionID,
		"from", current.Status.String(),
		"to", session.Status.String())

	return session, nil
}

// Delete removes a session in any status (admin only, enforced upstream)
func (s *Service) Delete(ctx context.Context, sessionID int64) error {
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return err
	}

	s.invalidate(ctx, sessionID)

	return nil
}

func (s *Service) invalidate(ctx context.Context, sessionID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, fmt.Sprintf("studysession:%d", sessionID)); err != nil {
		s.logger.Warn("Failed to invalidate session cache", "session_id", sessionID, "error", err.Error())
	}
	s.invalidateListCaches(ctx)
}

func (s *Service) invalidateListCaches(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "studysessions:*"); err != nil {
		s.logger.Warn("Failed to invalidate session list caches", "error", err.Error())
	}
}
