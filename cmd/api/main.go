package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"edusphere/internal/config"
	"edusphere/internal/consul"
	"edusphere/internal/database"
	"edusphere/internal/logger"
	"edusphere/internal/server"
)

func gracefulShutdown(apiServer *http.Server, deregister func(), done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Println("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	deregister()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	done <- true
}

func main() {
	slogger := logger.New("api")
	logger.SetDefault(slogger)

	required := []string{"DB_HOST", "DB_PORT", "DB_DATABASE", "DB_USERNAME", "DB_PASSWORD", "JWT_SIGNING_KEY"}
	if err := config.ValidateEnv(required); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if err := database.RunMigrations(database.ConnectionURL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	app, apiServer, err := server.New(slogger)
	if err != nil {
		log.Fatalf("Failed to build server: %v", err)
	}
	defer app.Close()

	deregister, err := consul.RegisterFromEnv("edusphere-api", app.Port(), slogger)
	if err != nil {
		log.Fatalf("Failed to register with Consul: %v", err)
	}

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, deregister, done)

	slogger.Info("API listening", "port", app.Port())
	err = apiServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	<-done
	log.Println("Graceful shutdown complete.")
}
