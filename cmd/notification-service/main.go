// Command notification-service consumes reminder.due_soon events pushed by
// the broker and surfaces them as structured notification log lines,
// de-duplicating repeated deliveries of the same event.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/huzaifanaeem1/todostream/internal/config"
	"github.com/huzaifanaeem1/todostream/internal/consumer"
	"github.com/huzaifanaeem1/todostream/internal/notification"
	"github.com/huzaifanaeem1/todostream/internal/platform/logger"
)

const (
	serviceName     = "notification-service"
	reminderRoute   = "/reminder"
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg := logger.Setup(cfg.Server.LogLevel)

	seen := notification.NewTTLStore(notification.DefaultCapacity, notification.DefaultTTL)
	svc := notification.NewService(seen, logg)
	reminderConsumer := consumer.New(notification.NewHandler(svc), logg)

	subs := []consumer.Subscription{
		consumer.NewSubscription(cfg.Broker.PubSubName, cfg.Broker.RemindersTopic, reminderRoute),
	}
	router := consumer.NewRouter(
		consumer.ServiceInfo{Name: serviceName},
		subs,
		map[string]*consumer.Consumer{reminderRoute: reminderConsumer},
		logg,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info("notification service listening",
			"port", cfg.Server.Port,
			"topic", cfg.Broker.RemindersTopic)
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
	logg.Info("notification service stopped")
}
