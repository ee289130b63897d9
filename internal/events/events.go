package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/huzaifanaeem1/todostream/internal/domain"
)

// Type identifies a task lifecycle or reminder event.
type Type string

// Event types published by the system.
const (
	TypeTaskCreated     Type = "task.created"
	TypeTaskUpdated     Type = "task.updated"
	TypeTaskCompleted   Type = "task.completed"
	TypeTaskDeleted     Type = "task.deleted"
	TypeReminderDueSoon Type = "reminder.due_soon"
)

// TaskSnapshot is the embedded copy of the subject task captured at publish
// time. It is a value copy, never a live reference: later mutations of the
// task do not retroactively affect an already-built event.
type TaskSnapshot struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	IsCompleted         bool     `json:"is_completed"`
	Priority            string   `json:"priority"`
	DueDate             *string  `json:"due_date"`
	IsRecurring         bool     `json:"is_recurring"`
	RecurrenceFrequency *string  `json:"recurrence_frequency"`
	Tags                []string `json:"tags"`
	CreatedAt           string   `json:"created_at"`
	UpdatedAt           string   `json:"updated_at"`
}

// Event is the wire payload delivered through the pub/sub channel.
//
// EventID is generated once at publish time; a buffered event keeps its ID
// across retries so consumers can deduplicate redeliveries.
type Event struct {
	EventID        string       `json:"event_id"`
	EventType      Type         `json:"event_type"`
	EventTimestamp string       `json:"event_timestamp"`
	UserID         string       `json:"user_id"`
	Task           TaskSnapshot `json:"task"`
	ReminderType   string       `json:"reminder_type,omitempty"`
}

// DateLayout is the wire format for date-only fields (due dates).
const DateLayout = "2006-01-02"

// Snapshot builds a TaskSnapshot from a task and its resolved tag names.
// The tag slice is copied so the snapshot stays immutable.
func Snapshot(task *domain.Task, tags []string) TaskSnapshot {
	snap := TaskSnapshot{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		IsCompleted: task.IsCompleted,
		Priority:    string(task.Priority),
		IsRecurring: task.IsRecurring,
		Tags:        make([]string, len(tags)),
		CreatedAt:   task.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.UTC().Format(time.RFC3339),
	}
	copy(snap.Tags, tags)

	if task.DueDate != nil {
		due := task.DueDate.UTC().Format(DateLayout)
		snap.DueDate = &due
	}
	if task.RecurrenceFrequency != nil {
		freq := string(*task.RecurrenceFrequency)
		snap.RecurrenceFrequency = &freq
	}

	return snap
}

// newEvent assembles a complete event payload for the given type and subject.
func newEvent(eventType Type, snap TaskSnapshot, userID uuid.UUID, reminderType string, now time.Time) Event {
	return Event{
		EventID:        uuid.New().String(),
		EventType:      eventType,
		EventTimestamp: now.UTC().Format(time.RFC3339),
		UserID:         userID.String(),
		Task:           snap,
		ReminderType:   reminderType,
	}
}
