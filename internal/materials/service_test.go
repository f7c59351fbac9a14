package materials

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"edusphere/internal/sessions"
	"edusphere/internal/users"
)

type fakeRepo struct {
	materials map[int64]*Material
	nextID    int64
}

func (f *fakeRepo) Create(_ context.Context, sessionID int64, tutorEmail string, req CreateMaterialRequest) (*Material, error) {
	f.nextID++
	m := &Material{
		ID:         f.nextID,
		SessionID:  sessionID,
		TutorEmail: tutorEmail,
		Title:      req.Title,
		FileKey:    req.FileKey,
		Link:       req.Link,
	}
	f.materials[m.ID] = m
	return m, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*Material, error) {
	m, ok := f.materials[id]
	if !ok {
		return nil, ErrMaterialNotFound
	}
	return m, nil
}

func (f *fakeRepo) ListBySession(_ context.Context, sessionID int64) ([]Material, error) {
	out := []Material{}
	for _, m := range f.materials {
		if m.SessionID == sessionID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.materials[id]; !ok {
		return ErrMaterialNotFound
	}
	delete(f.materials, id)
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

type fakeStorage struct {
	removed []string
}

func (f *fakeStorage) PresignUpload(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://minio.test/upload/" + key, nil
}

func (f *fakeStorage) PresignDownload(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://minio.test/download/" + key, nil
}

func (f *fakeStorage) Remove(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	return nil
}

func (f *fakeStorage) Health(context.Context) error { return nil }

func newTestService(store *fakeStorage) (*Service, *fakeRepo) {
	repo := &fakeRepo{materials: map[int64]*Material{}}
	catalog := &fakeSessions{sessions: map[int64]*sessions.Session{
		1: {ID: 1, TutorEmail: "tutor@example.com", Status: sessions.StatusApproved},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if store == nil {
		return NewService(repo, catalog, nil, logger), repo
	}
	return NewService(repo, catalog, store, logger), repo
}

func TestValidateFilename(t *testing.T) {
	valid := []string{"notes.pdf", "week 1.png", "syllabus.txt"}
	for _, name := range valid {
		if err := validateFilename(name); err != nil {
			t.Errorf("%q should be accepted: %v", name, err)
		}
	}

	invalid := []string{"", "noextension", "../etc/passwd.txt", `dir\file.pdf`, "a/b.pdf"}
	for _, name := range invalid {
		if err := validateFilename(name); err == nil {
			t.Errorf("%q should be rejected", name)
		}
	}
}

func TestPresignUploadWithoutStorage(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.PresignUpload(context.Background(), UploadURLRequest{
		Filename:    "notes.pdf",
		ContentType: "application/pdf",
	})
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestPresignUploadRejectsContentType(t *testing.T) {
	svc, _ := newTestService(&fakeStorage{})

	_, err := svc.PresignUpload(context.Background(), UploadURLRequest{
		Filename:    "payload.exe",
		ContentType: "application/octet-stream",
	})
	if err == nil {
		t.Error("expected rejection for disallowed content type")
	}
}

func TestCreateRequiresExactlyOneSource(t *testing.T) {
	svc, _ := newTestService(&fakeStorage{})

	cases := []CreateMaterialRequest{
		{Title: "both", FileKey: "k", Link: "https://example.com"},
		{Title: "neither"},
	}
	for _, req := range cases {
		if _, err := svc.Create(context.Background(), 1, "tutor@example.com", req); !errors.Is(err, ErrInvalidMaterial) {
			t.Errorf("%s: expected ErrInvalidMaterial, got %v", req.Title, err)
		}
	}

	if _, err := svc.Create(context.Background(), 1, "tutor@example.com", CreateMaterialRequest{
		Title: "link only", Link: "https://example.com/article",
	}); err != nil {
		t.Errorf("link-only material should be accepted: %v", err)
	}
}

func TestCreateChecksSessionOwnership(t *testing.T) {
	svc, _ := newTestService(&fakeStorage{})

	_, err := svc.Create(context.Background(), 1, "other@example.com", CreateMaterialRequest{
		Title: "stolen", Link: "https://example.com",
	})
	if !errors.Is(err, ErrNotSessionOwner) {
		t.Errorf("expected ErrNotSessionOwner, got %v", err)
	}
}

func TestListAttachesDownloadURLs(t *testing.T) {
	store := &fakeStorage{}
	svc, repo := newTestService(store)

	repo.materials[1] = &Material{ID: 1, SessionID: 1, TutorEmail: "tutor@example.com", FileKey: "abc-notes.pdf"}
	repo.materials[2] = &Material{ID: 2, SessionID: 1, TutorEmail: "tutor@example.com", Link: "https://example.com"}

	out, err := svc.ListBySession(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListBySession returned error: %v", err)
	}

	for _, m := range out {
		if m.FileKey != "" && m.DownloadURL == "" {
			t.Errorf("file material %d should carry a download URL", m.ID)
		}
		if m.FileKey == "" && m.DownloadURL != "" {
			t.Errorf("link material %d should not carry a download URL", m.ID)
		}
	}
}

func TestDeleteRemovesObjectAndChecksOwner(t *testing.T) {
	store := &fakeStorage{}
	svc, repo := newTestService(store)

	repo.materials[1] = &Material{ID: 1, SessionID: 1, TutorEmail: "tutor@example.com", FileKey: "abc-notes.pdf"}

	err := svc.Delete(context.Background(), 1, "other@example.com", users.RoleTutor)
	if !errors.Is(err, ErrNotSessionOwner) {
		t.Fatalf("expected ErrNotSessionOwner for foreign tutor, got %v", err)
	}

	if err := svc.Delete(context.Background(), 1, "tutor@example.com", users.RoleTutor); err != nil {
		t.Fatalf("owner delete should succeed: %v", err)
	}
	if len(store.removed) != 1 || store.removed[0] != "abc-notes.pdf" {
		t.Errorf("stored object should be removed, got %v", store.removed)
	}
}
