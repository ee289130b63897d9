package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/huzaifanaeem1/todostream/internal/domain"
	"github.com/huzaifanaeem1/todostream/internal/events"
	"github.com/huzaifanaeem1/todostream/internal/service"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Token  string    `json:"token"`
}

// TaskRequest defines the payload for creating or fully updating a task.
// Dates are date-only strings (YYYY-MM-DD).
type TaskRequest struct {
	Title               string   `json:"title"                validate:"required,max=255"`
	Description         string   `json:"description"          validate:"max=2000"`
	IsCompleted         bool     `json:"is_completed"`
	Priority            string   `json:"priority"             validate:"omitempty,oneof=high medium low"`
	DueDate             *string  `json:"due_date"`
	IsRecurring         bool     `json:"is_recurring"`
	RecurrenceFrequency *string  `json:"recurrence_frequency" validate:"omitempty,oneof=daily weekly monthly"`
	Tags                []string `json:"tags"                 validate:"max=20,dive,required,max=50"`
}

// TaskResponse is the API representation of a task with its tags.
type TaskResponse struct {
	ID                  uuid.UUID `json:"id"`
	UserID              uuid.UUID `json:"user_id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	IsCompleted         bool      `json:"is_completed"`
	Priority            string    `json:"priority"`
	DueDate             *string   `json:"due_date"`
	IsRecurring         bool      `json:"is_recurring"`
	RecurrenceFrequency *string   `json:"recurrence_frequency"`
	Tags                []string  `json:"tags"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// toTaskResponse converts a service result into the API shape.
func toTaskResponse(t *service.TaskWithTags) TaskResponse {
	resp := TaskResponse{
		ID:          t.Task.ID,
		UserID:      t.Task.UserID,
		Title:       t.Task.Title,
		Description: t.Task.Description,
		IsCompleted: t.Task.IsCompleted,
		Priority:    string(t.Task.Priority),
		IsRecurring: t.Task.IsRecurring,
		Tags:        t.Tags,
		CreatedAt:   t.Task.CreatedAt,
		UpdatedAt:   t.Task.UpdatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if t.Task.DueDate != nil {
		due := t.Task.DueDate.Format(events.DateLayout)
		resp.DueDate = &due
	}
	if t.Task.RecurrenceFrequency != nil {
		freq := string(*t.Task.RecurrenceFrequency)
		resp.RecurrenceFrequency = &freq
	}
	return resp
}

// parseTaskFields converts the wire-level request fields into domain values.
func parseTaskFields(req TaskRequest) (domain.Priority, *time.Time, *domain.RecurrenceFrequency, error) {
	priority, err := domain.ParsePriority(req.Priority)
	if err != nil {
		return "", nil, nil, err
	}

	var dueDate *time.Time
	if req.DueDate != nil && *req.DueDate != "" {
		parsed, err := time.ParseInLocation(events.DateLayout, *req.DueDate, time.UTC)
		if err != nil {
			return "", nil, nil, err
		}
		dueDate = &parsed
	}

	var frequency *domain.RecurrenceFrequency
	if req.RecurrenceFrequency != nil && *req.RecurrenceFrequency != "" {
		parsed, err := domain.ParseFrequency(*req.RecurrenceFrequency)
		if err != nil {
			return "", nil, nil, err
		}
		frequency = &parsed
	}

	return priority, dueDate, frequency, nil
}
