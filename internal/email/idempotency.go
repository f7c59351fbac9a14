package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"edusphere/internal/cache"
)

// IdempotencyStore handles deduplication of email events across redeliveries
type IdempotencyStore struct {
	store  cache.Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewIdempotencyStore creates a new idempotency store
func NewIdempotencyStore(store cache.Store, logger *slog.Logger) *IdempotencyStore {
	return &IdempotencyStore{
		store:  store,
		ttl:    24 * time.Hour, // dedup records outlive any reasonable redelivery window
		logger: logger,
	}
}

func (s *IdempotencyStore) buildKey(messageID string) string {
	return fmt.Sprintf("email:sent:%s", messageID)
}

// IsProcessed checks if an email event has already been processed
func (s *IdempotencyStore) IsProcessed(ctx context.Context, messageID string) (bool, error) {
	exists, err := s.store.Exists(ctx, s.buildKey(messageID))
	if err != nil {
		return false, fmt.Errorf("failed to check if message is processed: %w", err)
	}
	return exists, nil
}

// MarkAsProcessed marks an email event as processed.
// Returns true when this consumer won the claim, false when another delivery
// already did. Atomic via SET NX.
func (s *IdempotencyStore) MarkAsProcessed(ctx context.Context, event EmailEvent) (bool, error) {
	metadata := EmailMetadata{
		SentAt:    time.Now(),
		Recipient: event.Recipient,
		EventType: event.EventType,
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return false, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	claimed, err := s.store.SetIfAbsent(ctx, s.buildKey(event.MessageID), string(metadataJSON), s.ttl)
	if err != nil {
		return false, fmt.Errorf("failed to mark message as processed: %w", err)
	}

	if claimed {
		s.logger.Info("Marked email as processed",
			"message_id", event.MessageID,
			"recipient", event.Recipient,
			"type", string(event.EventType))
	} else {
		s.logger.Warn("Email already processed, duplicate detected",
			"message_id", event.MessageID,
			"recipient", event.Recipient,
			"type", string(event.EventType))
	}

	return claimed, nil
}
