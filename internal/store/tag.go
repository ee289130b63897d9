package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/huzaifanaeem1/todostream/internal/domain"
)

// TagStore defines the interface for tag data persistence.
// Tags are user-scoped: the same name may exist independently for
// different users.
type TagStore interface {
	// EnsureTags returns the tags with the given names for the user,
	// creating any that do not yet exist. Names are returned in the order
	// given, de-duplicated.
	EnsureTags(ctx context.Context, userID uuid.UUID, names []string) ([]*domain.Tag, error)

	// ReplaceTaskTags replaces the tag set associated with a task.
	ReplaceTaskTags(ctx context.Context, taskID uuid.UUID, tagIDs []uuid.UUID) error

	// NamesForTask returns the tag names attached to a task, sorted.
	NamesForTask(ctx context.Context, taskID uuid.UUID) ([]string, error)
}
