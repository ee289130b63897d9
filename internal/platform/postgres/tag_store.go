package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/huzaifanaeem1/todostream/internal/domain"
	"github.com/huzaifanaeem1/todostream/internal/store"
)

// TagStore implements store.TagStore using PostgreSQL.
type TagStore struct {
	db store.DBTX
}

var _ store.TagStore = (*TagStore)(nil)

// NewTagStore creates a new TagStore.
func NewTagStore(db store.DBTX) *TagStore {
	return &TagStore{db: db}
}

// WithTx returns a TagStore bound to the given transaction.
func (s *TagStore) WithTx(tx *sql.Tx) *TagStore {
	return &TagStore{db: tx}
}

// EnsureTags returns the user's tags with the given names, creating any
// that do not exist yet. Duplicate names in the input are collapsed.
func (s *TagStore) EnsureTags(ctx context.Context, userID uuid.UUID, names []string) ([]*domain.Tag, error) {
	var tags []*domain.Tag
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		tag, err := s.ensureTag(ctx, userID, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	return tags, nil
}

// ensureTag fetches a tag by name, inserting it on miss. A concurrent
// insert losing the unique-constraint race falls back to the fetch.
func (s *TagStore) ensureTag(ctx context.Context, userID uuid.UUID, name string) (*domain.Tag, error) {
	tag, err := s.getByName(ctx, userID, name)
	if err == nil {
		return tag, nil
	}
	if err != store.ErrTagNotFound {
		return nil, err
	}

	newTag, err := domain.NewTag(userID, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tags (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		newTag.ID, newTag.UserID, newTag.Name, newTag.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return s.getByName(ctx, userID, name)
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	return newTag, nil
}

func (s *TagStore) getByName(ctx context.Context, userID uuid.UUID, name string) (*domain.Tag, error) {
	var tag domain.Tag
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, created_at FROM tags WHERE user_id = $1 AND name = $2`,
		userID, name).
		Scan(&tag.ID, &tag.UserID, &tag.Name, &tag.CreatedAt)
	if err != nil {
		return nil, mapError(err, store.ErrTagNotFound)
	}
	return &tag, nil
}

// ReplaceTaskTags replaces the tag set associated with a task.
func (s *TagStore) ReplaceTaskTags(ctx context.Context, taskID uuid.UUID, tagIDs []uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM task_tags WHERE task_id = $1`, taskID); err != nil {
		return fmt.Errorf("failed to clear task tags: %w", err)
	}

	for _, tagID := range tagIDs {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO task_tags (task_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			taskID, tagID); err != nil {
			return fmt.Errorf("failed to attach tag: %w", err)
		}
	}

	return nil
}

// NamesForTask returns the tag names attached to a task, sorted.
func (s *TagStore) NamesForTask(ctx context.Context, taskID uuid.UUID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.name
		FROM tags t
		JOIN task_tags tt ON t.id = tt.tag_id
		WHERE tt.task_id = $1
		ORDER BY t.name
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query task tags: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}

	return names, nil
}
