package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Tag validation errors.
var (
	ErrEmptyTagName   = errors.New("tag name cannot be empty")
	ErrTagNameTooLong = errors.New("tag name must be at most 50 characters")
)

// Tag is a user-scoped label that can be attached to any number of tasks.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTag creates a new Tag for the given user.
// Returns an error if validation fails.
func NewTag(userID uuid.UUID, name string) (*Tag, error) {
	tag := &Tag{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if err := tag.Validate(); err != nil {
		return nil, err
	}

	return tag, nil
}

// Validate checks if the Tag has valid data.
func (t *Tag) Validate() error {
	if t.UserID == uuid.Nil {
		return ErrEmptyTaskUserID
	}
	if t.Name == "" {
		return ErrEmptyTagName
	}
	if len(t.Name) > 50 {
		return ErrTagNameTooLong
	}
	return nil
}
