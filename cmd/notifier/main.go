package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"edusphere/internal/cache"
	"edusphere/internal/config"
	"edusphere/internal/email"
	"edusphere/internal/kafka"
	"edusphere/internal/logger"
)

func main() {
	slogger := logger.New("notifier")
	logger.SetDefault(slogger)

	if err := config.ValidateEnv([]string{"KAFKA_BROKERS", "REDIS_ADDR"}); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	kafkaCfg, err := kafka.LoadConfig()
	if err != nil {
		log.Fatalf("Kafka configuration error: %v", err)
	}

	redisDB, _ := strconv.Atoi(config.GetEnvOrDefault("REDIS_DB", "0"))
	store := cache.NewRedisStore(os.Getenv("REDIS_ADDR"), os.Getenv("REDIS_PASSWORD"), redisDB)

	sender := email.NewSender(email.NewConfig())
	idempotency := email.NewIdempotencyStore(store, slogger)

	consumer, err := email.NewConsumer(&email.ConsumerConfig{
		Brokers:       kafkaCfg.Brokers,
		Topic:         kafkaCfg.EmailEventsTopic,
		DLQTopic:      kafkaCfg.EmailDLQTopic,
		ConsumerGroup: kafkaCfg.ConsumerGroup,
		MaxRetries:    3,
	}, sender, idempotency, slogger)
	if err != nil {
		log.Fatalf("Failed to create consumer: %v", err)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slogger.Info("Notifier starting", "topic", kafkaCfg.EmailEventsTopic)
	if err := consumer.Start(ctx); err != nil {
		log.Fatalf("Consumer error: %v", err)
	}

	slogger.Info("Notifier stopped")
}
