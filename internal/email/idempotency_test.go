package email

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

type memoryStore struct {
	values map[string]string
}

func (m *memoryStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.values[key] = value
	return nil
}

func (m *memoryStore) SetIfAbsent(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value
	return true, nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	return m.values[key], nil
}

func (m *memoryStore) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *memoryStore) DeleteByPattern(context.Context, string) error { return nil }

func (m *memoryStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.values[key]
	return ok, nil
}

func (m *memoryStore) Health(context.Context) error { return nil }

func TestIdempotencyStoreClaimsOnce(t *testing.T) {
	store := NewIdempotencyStore(
		&memoryStore{values: map[string]string{}},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	ctx := context.Background()

	event := EmailEvent{
		MessageID: "msg-1",
		EventType: EmailTypeBookingConfirmed,
		Recipient: "student@example.com",
	}

	processed, err := store.IsProcessed(ctx, event.MessageID)
	if err != nil || processed {
		t.Fatalf("fresh message must not be processed: %v %v", processed, err)
	}

	claimed, err := store.MarkAsProcessed(ctx, event)
	if err != nil || !claimed {
		t.Fatalf("first delivery must win the claim: %v %v", claimed, err)
	}

	claimed, err = store.MarkAsProcessed(ctx, event)
	if err != nil {
		t.Fatalf("MarkAsProcessed returned error: %v", err)
	}
	if claimed {
		t.Error("redelivery must not win the claim")
	}

	processed, err = store.IsProcessed(ctx, event.MessageID)
	if err != nil || !processed {
		t.Errorf("message must be recorded as processed: %v %v", processed, err)
	}
}
