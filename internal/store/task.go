package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/huzaifanaeem1/todostream/internal/domain"
)

// TaskStore defines the interface for task data persistence.
// All reads are scoped to the owning user; a task belonging to another user
// is reported as ErrTaskNotFound, never as a permission error.
type TaskStore interface {
	// Create saves a new task to the store.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its ID for the given user.
	// Returns ErrTaskNotFound if the task does not exist or belongs to
	// another user.
	GetByID(ctx context.Context, taskID, userID uuid.UUID) (*domain.Task, error)

	// ListByUser retrieves all tasks owned by the given user, most recently
	// created first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// Update persists the mutable fields of an existing task.
	// Returns ErrTaskNotFound if the task does not exist or belongs to
	// another user.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task. Returns ErrTaskNotFound if the task does not
	// exist or belongs to another user.
	Delete(ctx context.Context, taskID, userID uuid.UUID) error

	// DueWithin retrieves incomplete tasks with a due date between now and
	// the end of the window, across all users. Used by the reminder scanner.
	DueWithin(ctx context.Context, now time.Time, window time.Duration) ([]*domain.Task, error)
}
