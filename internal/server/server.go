// Package server wires the platform's HTTP API: dependency construction,
// route registration, and health reporting.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"edusphere/internal/bookings"
	"edusphere/internal/cache"
	"edusphere/internal/config"
	"edusphere/internal/database"
	"edusphere/internal/email"
	"edusphere/internal/kafka"
	"edusphere/internal/materials"
	"edusphere/internal/notes"
	"edusphere/internal/sessions"
	"edusphere/internal/storage"
	"edusphere/internal/token"
	"edusphere/internal/users"
)

// Server holds the dependencies for the HTTP API
type Server struct {
	port   int
	logger *slog.Logger

	db      database.Service
	cache   cache.Store
	storage storage.Service

	issuer   *token.Issuer
	users    users.Service
	sessions *sessions.Handler
	bookings *bookings.Handler
	material *materials.Handler
	notes    *notes.Handler
	producer *kafka.Producer
}

// Config holds HTTP server configuration
type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// LoadConfigFromEnv loads server configuration from environment variables
func LoadConfigFromEnv() *Config {
	port, _ := strconv.Atoi(config.GetEnvOrDefault("PORT", "8080"))

	return &Config{
		Port:         port,
		ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
	}
}

// New constructs the API server and all its dependencies
func New(logger *slog.Logger) (*Server, *http.Server, error) {
	cfg := LoadConfigFromEnv()

	if err := config.ValidateSigningKey(); err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := database.New()

	var store cache.Store
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisDB, _ := strconv.Atoi(config.GetEnvOrDefault("REDIS_DB", "0"))
		store = cache.NewRedisStore(addr, os.Getenv("REDIS_PASSWORD"), redisDB)
	} else {
		logger.Warn("REDIS_ADDR not set, running without cache")
	}

	var objectStore storage.Service
	if storageCfg, err := storage.LoadConfig(); err != nil {
		logger.Warn("Object storage disabled", "reason", err.Error())
	} else {
		objectStore, err = storage.New(ctx, storageCfg, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
	}

	var producer *kafka.Producer
	var notifier *email.Notifier
	if kafkaCfg, err := kafka.LoadConfig(); err != nil {
		logger.Warn("Notifications disabled", "reason", err.Error())
	} else {
		producer, err = kafka.NewProducer(kafkaCfg, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize kafka producer: %w", err)
		}
		notifier = email.NewNotifier(producer, kafkaCfg.EmailEventsTopic, logger)
	}

	issuer := token.NewIssuer(
		os.Getenv("JWT_SIGNING_KEY"),
		config.GetEnvOrDefault("JWT_ISSUER", "edusphere"),
	)

	userSvc := users.NewService(db)

	sessionSvc := sessions.NewService(sessions.NewRepository(db), store, notifier, logger)
	bookingSvc := bookings.NewService(bookings.NewRepository(db), sessionSvc, notifier, logger)
	materialSvc := materials.NewService(materials.NewRepository(db), sessionSvc, objectStore, logger)

	s := &Server{
		port:     cfg.Port,
		logger:   logger,
		db:       db,
		cache:    store,
		storage:  objectStore,
		issuer:   issuer,
		users:    userSvc,
		sessions: sessions.NewHandler(sessionSvc),
		bookings: bookings.NewHandler(bookingSvc),
		material: materials.NewHandler(materialSvc),
		notes:    notes.NewHandler(notes.NewService(db)),
		producer: producer,
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.RegisterRoutes(),
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, httpServer, nil
}

// Close releases the server's long-lived dependencies
func (s *Server) Close() {
	if s.producer != nil {
		s.producer.Close()
	}
	s.db.Close()
}

// Port returns the configured listen port
func (s *Server) Port() int {
	return s.port
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
