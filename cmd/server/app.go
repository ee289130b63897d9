package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/huzaifanaeem1/todostream/internal/config"
	"github.com/huzaifanaeem1/todostream/internal/events"
	"github.com/huzaifanaeem1/todostream/internal/platform/postgres"
	"github.com/huzaifanaeem1/todostream/internal/service"
	"github.com/huzaifanaeem1/todostream/internal/service/auth"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// application holds the wired dependencies of the server binary.
type application struct {
	config    *config.Config
	logger    *slog.Logger
	db        *sql.DB
	publisher *events.Publisher
	scanner   *service.ReminderScanner

	userService service.UserService
	taskService service.TaskService
	jwtService  auth.JWTService
}

// newApplication wires configuration into a runnable application: database
// and migrations, stores, event publisher, services, and the reminder
// scanner.
func newApplication(cfg *config.Config) (*application, error) {
	logger := slog.Default()

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	taskStore := postgres.NewTaskStore(db)
	tagStore := postgres.NewTagStore(db)
	userStore := postgres.NewUserStore(db)

	publisher := events.NewPublisher(events.Config{
		BrokerURL:       cfg.Broker.BaseURL,
		PubSubName:      cfg.Broker.PubSubName,
		TaskEventsTopic: cfg.Broker.TaskEventsTopic,
		RemindersTopic:  cfg.Broker.RemindersTopic,
		PublishTimeout:  time.Duration(cfg.Broker.PublishTimeoutSeconds) * time.Second,
		RetryInterval:   time.Duration(cfg.Broker.RetryIntervalSeconds) * time.Second,
	}, logger)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating JWT service: %w", err)
	}

	taskService := service.NewTaskService(taskStore, tagStore, publisher)
	userService := service.NewUserService(userStore, auth.NewBcryptHasher(), jwtService)

	scanner := service.NewReminderScanner(
		taskStore,
		tagStore,
		publisher,
		logger,
		time.Duration(cfg.Reminder.ScanIntervalMinutes)*time.Minute,
		time.Duration(cfg.Reminder.WindowHours)*time.Hour,
	)

	return &application{
		config:      cfg,
		logger:      logger,
		db:          db,
		publisher:   publisher,
		scanner:     scanner,
		userService: userService,
		taskService: taskService,
		jwtService:  jwtService,
	}, nil
}

// Run starts the reminder scanner and the HTTP server, then blocks until
// a termination signal arrives and shutdown completes.
func (app *application) Run() error {
	app.scanner.Start()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("server listening", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		app.shutdown(nil)
		return err
	case sig := <-stop:
		app.logger.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	app.shutdown(ctx)
	return err
}

// shutdown stops background work and releases resources.
func (app *application) shutdown(_ context.Context) {
	app.scanner.Stop()
	app.publisher.Close()
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database", "error", err)
	}
	app.logger.Info("server stopped")
}
