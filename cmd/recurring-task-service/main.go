// Command recurring-task-service consumes task.completed events pushed by
// the broker and generates the next instance of recurring tasks.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Registers the pgx stdlib driver under the name "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/huzaifanaeem1/todostream/internal/config"
	"github.com/huzaifanaeem1/todostream/internal/consumer"
	"github.com/huzaifanaeem1/todostream/internal/platform/logger"
	"github.com/huzaifanaeem1/todostream/internal/platform/postgres"
	"github.com/huzaifanaeem1/todostream/internal/recurrence"
)

const (
	serviceName     = "recurring-task-service"
	completedRoute  = "/task-completed"
	connectTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg := logger.Setup(cfg.Server.LogLevel)

	db, err := openDatabase(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logg.Error("failed to close database", "error", err)
		}
	}()

	engine := recurrence.NewEngine(postgres.NewRecurrenceStore(db), logg)
	completedConsumer := consumer.New(recurrence.NewHandler(engine), logg)

	subs := []consumer.Subscription{
		consumer.NewSubscription(cfg.Broker.PubSubName, cfg.Broker.TaskEventsTopic, completedRoute),
	}
	router := consumer.NewRouter(
		consumer.ServiceInfo{Name: serviceName},
		subs,
		map[string]*consumer.Consumer{completedRoute: completedConsumer},
		logg,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info("recurring task service listening",
			"port", cfg.Server.Port,
			"topic", cfg.Broker.TaskEventsTopic)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server error: %v", err)
	case sig := <-stop:
		logg.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logg.Error("graceful shutdown failed", "error", err)
	}
	logg.Info("recurring task service stopped")
}

// openDatabase connects to Postgres and verifies connectivity. Migrations
// are owned by the primary backend; this service assumes the schema exists.
func openDatabase(url string) (*sql.DB, error) {
	if url == "" {
		return nil, fmt.Errorf("database URL is not configured")
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}
