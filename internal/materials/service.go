// Package materials manages study resources attached to sessions. File
// contents live in object storage behind presigned URLs; only metadata is
// kept in Postgres.
package materials

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"edusphere/internal/sessions"
	"edusphere/internal/storage"
	"edusphere/internal/users"
)

var (
	// ErrNotSessionOwner is returned when a tutor touches another tutor's
	// session materials
	ErrNotSessionOwner = errors.New("session belongs to another tutor")
	// ErrInvalidMaterial is returned for payloads that set neither or both
	// of file_key and link
	ErrInvalidMaterial = errors.New("material must have exactly one of file_key or link")
	// ErrStorageUnavailable is returned for file operations when the object
	// store is not configured
	ErrStorageUnavailable = errors.New("object storage is not available")
)

// repository abstracts persistence for the service
type repository interface {
	Create(ctx context.Context, sessionID int64, tutorEmail string, req CreateMaterialRequest) (*Material, error)
	GetByID(ctx context.Context, materialID int64) (*Material, error)
	ListBySession(ctx context.Context, sessionID int64) ([]Material, error)
	Delete(ctx context.Context, materialID int64) error
}

// sessionGetter resolves sessions for ownership checks
type sessionGetter interface {
	Get(ctx context.Context, sessionID int64) (*sessions.Session, error)
}

// Service handles business logic for study materials
type Service struct {
	repo     repository
	sessions sessionGetter
	storage  storage.Service
	logger   *slog.Logger
}

// NewService creates a new materials service
func NewService(repo repository, sessionSvc sessionGetter, store storage.Service, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		sessions: sessionSvc,
		storage:  store,
		logger:   logger,
	}
}

func validateFilename(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if len(filename) > maxFilenameLength {
		return fmt.Errorf("filename too long (max %d characters)", maxFilenameLength)
	}
	if strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) {
		return fmt.Errorf("filename contains invalid characters")
	}
	if filepath.Ext(filename) == "" {
		return fmt.Errorf("filename must have an extension")
	}
	return nil
}

// PresignUpload validates the request and returns a presigned upload slot
func (s *Service) PresignUpload(ctx context.Context, req UploadURLRequest) (*UploadURLResponse, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	if err := validateFilename(req.Filename); err != nil {
		return nil, fmt.Errorf("invalid filename: %w", err)
	}
	if !allowedContentTypes[req.ContentType] {
		return nil, fmt.Errorf("content type %s is not allowed", req.ContentType)
	}

	fileKey := fmt.Sprintf("%s-%s", uuid.NewString(), req.Filename)

	uploadURL, err := s.storage.PresignUpload(ctx, fileKey, req.ContentType, uploadTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &UploadURLResponse{
		UploadURL: uploadURL,
		FileKey:   fileKey,
		ExpiresAt: time.Now().Add(uploadTTL).Unix(),
	}, nil
}

// Create registers material metadata for a session owned by the tutor
func (s *Service) Create(ctx context.Context, sessionID int64, tutorEmail string, req CreateMaterialRequest) (*Material, error) {
	if (req.FileKey == "") == (req.Link == "") {
		return nil, ErrInvalidMaterial
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.TutorEmail != tutorEmail {
		return nil, ErrNotSessionOwner
	}

	return s.repo.Create(ctx, sessionID, tutorEmail, req)
}

// ListBySession returns a session's materials with fresh download URLs for
// file-backed entries
func (s *Service) ListBySession(ctx context.Context, sessionID int64) ([]Material, error) {
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}

	materials, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for i := range materials {
		if materials[i].FileKey == "" || s.storage == nil {
			continue
		}
		url, err := s.storage.PresignDownload(ctx, materials[i].FileKey, downloadTTL)
		if err != nil {
			s.logger.Warn("Failed to presign download",
				"material_id", materials[i].ID,
				"error", err.Error())
			continue
		}
		materials[i].DownloadURL = url
	}

	return materials, nil
}

// Delete removes a material and its stored object. Tutors may delete their
// own materials; admins may delete any.
func (s *Service) Delete(ctx context.Context, materialID int64, requesterEmail string, requesterRole users.Role) error {
	material, err := s.repo.GetByID(ctx, materialID)
	if err != nil {
		return err
	}

	if material.TutorEmail != requesterEmail && requesterRole != users.RoleAdmin {
		return ErrNotSessionOwner
	}

	if err := s.repo.Delete(ctx, materialID); err != nil {
		return err
	}

	if material.FileKey != "" && s.storage != nil {
		if err := s.storage.Remove(ctx, material.FileKey); err != nil {
			s.logger.Warn("Failed to remove stored object",
				"file_key", material.FileKey,
				"error", err.Error())
		}
	}

	return nil
}
