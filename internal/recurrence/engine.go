package recurrence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/huzaifanaeem1/todostream/internal/consumer"
	"github.com/huzaifanaeem1/todostream/internal/domain"
	"github.com/huzaifanaeem1/todostream/internal/events"
)

// Outcome classifies what processing a task.completed event did.
// Skips are explicit result variants, not errors.
type Outcome int

const (
	// OutcomeSkipped means the task is not a recurring task (or lacks a
	// frequency or due date) and no generation was attempted.
	OutcomeSkipped Outcome = iota

	// OutcomeAlreadyGenerated means the idempotency marker shows the next
	// instance for this cycle was already created, so the event is a
	// redelivery (or a replay) and nothing was written.
	OutcomeAlreadyGenerated

	// OutcomeGenerated means a new task instance was created.
	OutcomeGenerated
)

// String returns a human-readable name for logging.
func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeAlreadyGenerated:
		return "already_generated"
	case OutcomeGenerated:
		return "generated"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// ProcessResult reports the outcome of processing one event and, for
// OutcomeGenerated, the ID of the new task instance.
type ProcessResult struct {
	Outcome   Outcome
	NewTaskID uuid.UUID
}

// Store is the persistence surface the engine needs. Implementations must
// make GenerateNextInstance atomic: the insert, the tag copy, and the
// marker update commit together or not at all.
type Store interface {
	// LastRecurrenceDate returns the source task's idempotency marker, or
	// nil if no instance has ever been generated for it.
	LastRecurrenceDate(ctx context.Context, taskID uuid.UUID) (*time.Time, error)

	// GenerateNextInstance atomically inserts the next task instance,
	// copies all tag associations from the source task to it, and sets the
	// source task's last_recurrence_date to the new instance's due date.
	GenerateNextInstance(ctx context.Context, sourceTaskID uuid.UUID, next *domain.Task) error
}

// Engine creates the next instance of a recurring task in response to
// task.completed events. Safety under redelivery comes from re-evaluating
// the persisted idempotency marker on every delivery, not from any
// cross-service lock.
type Engine struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine creates a recurrence Engine backed by the given store.
func NewEngine(store Store, logger *slog.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: logger.With("component", "recurrence_engine"),
		now:    time.Now,
	}
}

// Process handles one task.completed event.
//
// Database errors propagate to the caller and become transient failures:
// the marker update did not commit, so redelivery re-runs the idempotency
// check safely.
func (e *Engine) Process(ctx context.Context, evt *events.Event) (ProcessResult, error) {
	snap := evt.Task

	if !snap.IsRecurring || snap.RecurrenceFrequency == nil || snap.DueDate == nil {
		e.logger.Info("task is not recurring, skipping",
			"event_id", evt.EventID,
			"task_id", snap.ID)
		return ProcessResult{Outcome: OutcomeSkipped}, nil
	}

	taskID, err := uuid.Parse(snap.ID)
	if err != nil {
		return ProcessResult{}, consumer.Schemaf("invalid task.id %q: %v", snap.ID, err)
	}
	userID, err := uuid.Parse(evt.UserID)
	if err != nil {
		return ProcessResult{}, consumer.Schemaf("invalid user_id %q: %v", evt.UserID, err)
	}

	frequency, err := domain.ParseFrequency(*snap.RecurrenceFrequency)
	if err != nil {
		return ProcessResult{}, consumer.Schemaf("invalid recurrence_frequency %q", *snap.RecurrenceFrequency)
	}

	dueDate, err := parseDueDate(*snap.DueDate)
	if err != nil {
		return ProcessResult{}, consumer.Schemaf("invalid due_date %q: %v", *snap.DueDate, err)
	}

	nextDue, err := NextDueDate(dueDate, frequency)
	if err != nil {
		return ProcessResult{}, consumer.Schemaf("%v", err)
	}

	marker, err := e.store.LastRecurrenceDate(ctx, taskID)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("failed to read recurrence marker: %w", err)
	}
	if marker != nil && !marker.Before(nextDue) {
		e.logger.Info("next instance already generated for this cycle, skipping",
			"event_id", evt.EventID,
			"task_id", snap.ID,
			"last_recurrence_date", marker.Format(events.DateLayout))
		return ProcessResult{Outcome: OutcomeAlreadyGenerated}, nil
	}

	next, err := e.buildNextInstance(snap, userID, frequency, nextDue)
	if err != nil {
		return ProcessResult{}, err
	}

	if err := e.store.GenerateNextInstance(ctx, taskID, next); err != nil {
		return ProcessResult{}, fmt.Errorf("failed to generate next instance: %w", err)
	}

	e.logger.Info("created next recurring task instance",
		"event_id", evt.EventID,
		"source_task_id", snap.ID,
		"new_task_id", next.ID,
		"due_date", nextDue.Format(events.DateLayout))

	return ProcessResult{Outcome: OutcomeGenerated, NewTaskID: next.ID}, nil
}

// buildNextInstance copies the source task's metadata into a fresh,
// incomplete task due on the next cycle date.
func (e *Engine) buildNextInstance(
	snap events.TaskSnapshot,
	userID uuid.UUID,
	frequency domain.RecurrenceFrequency,
	nextDue time.Time,
) (*domain.Task, error) {
	priority, err := domain.ParsePriority(snap.Priority)
	if err != nil {
		return nil, consumer.Schemaf("invalid priority %q", snap.Priority)
	}

	now := e.now().UTC()
	next := &domain.Task{
		ID:                  uuid.New(),
		UserID:              userID,
		Title:               snap.Title,
		Description:         snap.Description,
		IsCompleted:         false,
		Priority:            priority,
		DueDate:             &nextDue,
		IsRecurring:         snap.IsRecurring,
		RecurrenceFrequency: &frequency,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := next.Validate(); err != nil {
		return nil, consumer.Schemaf("invalid next instance: %v", err)
	}
	return next, nil
}

// parseDueDate accepts the wire date-only form and, for robustness against
// older publishers, a full RFC 3339 timestamp.
func parseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(events.DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Handler adapts the Engine to the consumer.Handler contract for
// task.completed events.
type Handler struct {
	engine *Engine
}

// NewHandler creates the task.completed event handler.
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// EventType implements consumer.Handler.
func (h *Handler) EventType() events.Type {
	return events.TypeTaskCompleted
}

// Process implements consumer.Handler. Skips and replays are successes;
// only store failures surface as (transient) errors.
func (h *Handler) Process(ctx context.Context, evt *events.Event) error {
	_, err := h.engine.Process(ctx, evt)
	return err
}
