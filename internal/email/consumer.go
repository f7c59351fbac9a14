package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// Consumer reads email events from Kafka and hands them to a Sender.
// Redeliveries are filtered through the idempotency store so a student is
// never emailed twice for the same booking.
type Consumer struct {
	consumer         *kafka.Consumer
	sender           Sender
	idempotencyStore *IdempotencyStore
	dlqProducer      *kafka.Producer
	config           *ConsumerConfig
	logger           *slog.Logger
}

// ConsumerConfig holds consumer configuration
type ConsumerConfig struct {
	Brokers       string
	Topic         string
	DLQTopic      string
	ConsumerGroup string
	MaxRetries    int
}

// NewConsumer creates a new Kafka consumer with a DLQ producer for
// events that keep failing
func NewConsumer(
	config *ConsumerConfig,
	sender Sender,
	idempotencyStore *IdempotencyStore,
	logger *slog.Logger,
) (*Consumer, error) {
	consumerConfig := &kafka.ConfigMap{
		"bootstrap.servers":  config.Brokers,
		"group.id":           config.ConsumerGroup,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false, // manual commit after processing
	}

	c, err := kafka.NewConsumer(consumerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	dlqProducer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": config.Brokers,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create DLQ producer: %w", err)
	}

	consumer := &Consumer{
		consumer:         c,
		sender:           sender,
		idempotencyStore: idempotencyStore,
		dlqProducer:      dlqProducer,
		config:           config,
		logger:           logger,
	}

	logger.Info("Kafka consumer initialized",
		"brokers", config.Brokers,
		"topic", config.Topic,
		"group", config.ConsumerGroup)

	return consumer, nil
}

// Start consumes messages until the context is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.consumer.Subscribe(c.config.Topic, nil); err != nil {
		return fmt.Errorf("failed to subscribe to topic: %w", err)
	}

	c.logger.Info("Starting to consume messages", "topic", c.config.Topic)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Consumer shutting down...")
			return nil

		default:
			msg, err := c.consumer.ReadMessage(1 * time.Second)
			if err != nil {
				if err.(kafka.Error).Code() == kafka.ErrTimedOut {
					continue
				}
				c.logger.Error("Error reading message", "error", err)
				continue
			}

			c.processMessage(ctx, msg)
		}
	}
}

// processMessage handles one delivery: parse, dedup, send, commit
func (c *Consumer) processMessage(ctx context.Context, msg *kafka.Message) {
	var event EmailEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("Failed to parse email event",
			"error", err,
			"raw_value", string(msg.Value))
		c.commitMessage(msg) // skip poison message
		return
	}

	if event.MessageID == "" {
		c.logger.Error("Email event missing message_id",
			"recipient", event.Recipient,
			"type", string(event.EventType))
		c.commitMessage(msg)
		return
	}

	isProcessed, err := c.idempotencyStore.IsProcessed(ctx, event.MessageID)
	if err != nil {
		c.logger.Error("Failed to check idempotency",
			"message_id", event.MessageID,
			"error", err)
		return // no commit, redeliver
	}
	if isProcessed {
		c.logger.Warn("Duplicate email event detected, skipping",
			"message_id", event.MessageID,
			"recipient", event.Recipient)
		c.commitMessage(msg)
		return
	}

	if err := c.processWithRetry(event); err != nil {
		c.logger.Error("Failed to process email event after retries",
			"message_id", event.MessageID,
			"error", err)
		c.sendToDLQ(event, err)
		c.commitMessage(msg)
		return
	}

	if _, err := c.idempotencyStore.MarkAsProcessed(ctx, event); err != nil {
		c.logger.Error("Failed to mark as processed",
			"message_id", event.MessageID,
			"error", err)
		return // no commit, the dedup key will absorb the redelivery
	}

	c.commitMessage(msg)

	c.logger.Info("Email event processed",
		"message_id", event.MessageID,
		"recipient", event.Recipient,
		"type", string(event.EventType))
}

// processWithRetry attempts to send the email with linear backoff
func (c *Consumer) processWithRetry(event EmailEvent) error {
	maxRetries := c.config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := c.sender.SendEmailEvent(event); err == nil {
			return nil
		} else {
			lastErr = err
			c.logger.Warn("Failed to send email, will retry",
				"message_id", event.MessageID,
				"attempt", attempt,
				"max_retries", maxRetries,
				"error", err)
		}

		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * time.Second)
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// sendToDLQ forwards a failed event to the dead letter queue with context
func (c *Consumer) sendToDLQ(event EmailEvent, processingError error) {
	dlqEvent := map[string]any{
		"original_event": event,
		"error":          processingError.Error(),
		"failed_at":      time.Now(),
		"consumer_group": c.config.ConsumerGroup,
	}

	jsonData, err := json.Marshal(dlqEvent)
	if err != nil {
		c.logger.Error("Failed to marshal DLQ event",
			"message_id", event.MessageID,
			"error", err)
		return
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &c.config.DLQTopic,
			Partition: kafka.PartitionAny,
		},
		Value: jsonData,
	}

	if err := c.dlqProducer.Produce(msg, nil); err != nil {
		c.logger.Error("Failed to send to DLQ",
			"message_id", event.MessageID,
			"error", err)
		return
	}

	c.logger.Warn("Email event sent to DLQ",
		"message_id", event.MessageID,
		"recipient", event.Recipient,
		"dlq_topic", c.config.DLQTopic)
}

func (c *Consumer) commitMessage(msg *kafka.Message) {
	if _, err := c.consumer.CommitMessage(msg); err != nil {
		c.logger.Error("Failed to commit offset",
			"topic", *msg.TopicPartition.Topic,
			"partition", msg.TopicPartition.Partition,
			"offset", msg.TopicPartition.Offset,
			"error", err)
	}
}

// Close shuts down the consumer and its DLQ producer
func (c *Consumer) Close() {
	c.logger.Info("Closing Kafka consumer...")
	c.dlqProducer.Flush(5000)
	c.dlqProducer.Close()
	c.consumer.Close()
}
