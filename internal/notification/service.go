package notification

import (
	"context"
	"log/slog"
	"sync"

	"github.com/huzaifanaeem1/todostream/internal/consumer"
	"github.com/huzaifanaeem1/todostream/internal/events"
)

// Service logs reminder notifications exactly once per event ID within the
// seen-store's TTL window.
type Service struct {
	seen   SeenStore
	logger *slog.Logger

	// mu serializes the check-then-record sequence so two concurrent
	// deliveries of the same event ID cannot both be treated as new.
	mu sync.Mutex
}

// NewService creates a notification Service using the given seen-store.
func NewService(seen SeenStore, logger *slog.Logger) *Service {
	return &Service{
		seen:   seen,
		logger: logger.With("component", "notification_service"),
	}
}

// LogIfNew emits a structured notification line for the event unless the
// same event ID was already logged within the TTL window. Duplicates are a
// silent no-op; the event stays acknowledged either way.
func (s *Service) LogIfNew(ctx context.Context, evt *events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seen.Seen(evt.EventID) {
		s.logger.Info("duplicate reminder event, skipping notification",
			"event_id", evt.EventID)
		return
	}

	dueDate := ""
	if evt.Task.DueDate != nil {
		dueDate = *evt.Task.DueDate
	}

	s.logger.Info("REMINDER",
		"reminder_type", evt.ReminderType,
		"user_id", evt.UserID,
		"task_id", evt.Task.ID,
		"task_title", evt.Task.Title,
		"due_date", dueDate,
		"priority", evt.Task.Priority)

	s.seen.Remember(evt.EventID)
}

// Handler adapts the Service to the consumer.Handler contract for
// reminder.due_soon events.
type Handler struct {
	service *Service
}

// NewHandler creates the reminder event handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// EventType implements consumer.Handler.
func (h *Handler) EventType() events.Type {
	return events.TypeReminderDueSoon
}

// Process validates the reminder-specific fields and delegates to the
// Service. Missing fields are schema errors, which the consumer maps to a
// permanent failure.
func (h *Handler) Process(ctx context.Context, evt *events.Event) error {
	if evt.Task.Title == "" {
		return consumer.Schemaf("missing task.title in event data")
	}
	if evt.Task.DueDate == nil || *evt.Task.DueDate == "" {
		return consumer.Schemaf("missing task.due_date in event data")
	}
	if evt.ReminderType == "" {
		return consumer.Schemaf("missing reminder_type in event data")
	}

	h.service.LogIfNew(ctx, evt)
	return nil
}
