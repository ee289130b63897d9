package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common task validation errors.
var (
	ErrEmptyTaskID             = errors.New("task ID cannot be empty")
	ErrEmptyTaskUserID         = errors.New("task user ID cannot be empty")
	ErrEmptyTitle              = errors.New("task title cannot be empty")
	ErrTitleTooLong            = errors.New("task title must be at most 255 characters")
	ErrInvalidPriority         = errors.New("invalid task priority")
	ErrInvalidFrequency        = errors.New("invalid recurrence frequency")
	ErrRecurringWithoutDueDate = errors.New("recurring task requires a due date")
	ErrRecurringWithoutFreq    = errors.New("recurring task requires a recurrence frequency")
)

// Priority is the urgency level of a task.
type Priority string

// Valid priority values.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority converts a string to a Priority, defaulting to medium for
// the empty string.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return Priority(s), nil
	case "":
		return PriorityMedium, nil
	default:
		return "", ErrInvalidPriority
	}
}

// RecurrenceFrequency is the interval at which a recurring task repeats.
type RecurrenceFrequency string

// Valid recurrence frequency values.
const (
	FrequencyDaily   RecurrenceFrequency = "daily"
	FrequencyWeekly  RecurrenceFrequency = "weekly"
	FrequencyMonthly RecurrenceFrequency = "monthly"
)

// ParseFrequency converts a string to a RecurrenceFrequency.
func ParseFrequency(s string) (RecurrenceFrequency, error) {
	switch RecurrenceFrequency(s) {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return RecurrenceFrequency(s), nil
	default:
		return "", ErrInvalidFrequency
	}
}

// Task represents a single to-do item owned by a user.
//
// DueDate and LastRecurrenceDate carry date-only semantics; they are stored
// and compared truncated to midnight UTC. LastRecurrenceDate is the
// recurrence engine's idempotency marker: it records the due date of the
// most recently generated next instance and is monotonically non-decreasing.
type Task struct {
	ID                  uuid.UUID            `json:"id"`
	UserID              uuid.UUID            `json:"user_id"`
	Title               string               `json:"title"`
	Description         string               `json:"description"`
	IsCompleted         bool                 `json:"is_completed"`
	Priority            Priority             `json:"priority"`
	DueDate             *time.Time           `json:"due_date,omitempty"`
	IsRecurring         bool                 `json:"is_recurring"`
	RecurrenceFrequency *RecurrenceFrequency `json:"recurrence_frequency,omitempty"`
	LastRecurrenceDate  *time.Time           `json:"last_recurrence_date,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// NewTask creates a new Task owned by the given user.
// It generates a new UUID for the task ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewTask(
	userID uuid.UUID,
	title, description string,
	priority Priority,
	dueDate *time.Time,
	isRecurring bool,
	frequency *RecurrenceFrequency,
) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:                  uuid.New(),
		UserID:              userID,
		Title:               title,
		Description:         description,
		IsCompleted:         false,
		Priority:            priority,
		DueDate:             normalizeDate(dueDate),
		IsRecurring:         isRecurring,
		RecurrenceFrequency: frequency,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.UserID == uuid.Nil {
		return ErrEmptyTaskUserID
	}
	if t.Title == "" {
		return ErrEmptyTitle
	}
	if len(t.Title) > 255 {
		return ErrTitleTooLong
	}

	switch t.Priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
	default:
		return ErrInvalidPriority
	}

	if t.RecurrenceFrequency != nil {
		if _, err := ParseFrequency(string(*t.RecurrenceFrequency)); err != nil {
			return err
		}
	}

	if t.IsRecurring {
		if t.RecurrenceFrequency == nil {
			return ErrRecurringWithoutFreq
		}
		if t.DueDate == nil {
			return ErrRecurringWithoutDueDate
		}
	}

	return nil
}

// normalizeDate truncates a date-only field to midnight UTC.
func normalizeDate(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	truncated := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return &truncated
}
