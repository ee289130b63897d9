package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/huzaifanaeem1/todostream/internal/domain"
	"github.com/huzaifanaeem1/todostream/internal/platform/logger"
	"github.com/huzaifanaeem1/todostream/internal/recurrence"
	"github.com/huzaifanaeem1/todostream/internal/store"
)

// RecurrenceStore implements recurrence.Store using PostgreSQL.
//
// Unlike the other stores it holds a *sql.DB rather than a DBTX, because
// GenerateNextInstance owns its transaction: the insert, the tag copy, and
// the marker update are the system's only cross-row consistency
// requirement and must commit together or not at all.
type RecurrenceStore struct {
	db *sql.DB
}

var _ recurrence.Store = (*RecurrenceStore)(nil)

// NewRecurrenceStore creates a new RecurrenceStore.
func NewRecurrenceStore(db *sql.DB) *RecurrenceStore {
	return &RecurrenceStore{db: db}
}

// LastRecurrenceDate returns the source task's idempotency marker, or nil
// if no next instance was ever generated for it.
func (s *RecurrenceStore) LastRecurrenceDate(ctx context.Context, taskID uuid.UUID) (*time.Time, error) {
	var marker sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT last_recurrence_date FROM tasks WHERE id = $1`, taskID).
		Scan(&marker)
	if err != nil {
		return nil, mapError(err, store.ErrTaskNotFound)
	}

	if !marker.Valid {
		return nil, nil
	}
	m := marker.Time.UTC()
	return &m, nil
}

// GenerateNextInstance atomically inserts the next task instance, copies
// the source task's tag associations onto it, and advances the source
// task's last_recurrence_date to the new due date. Any error rolls the
// whole transaction back.
func (s *RecurrenceStore) GenerateNextInstance(ctx context.Context, sourceTaskID uuid.UUID, next *domain.Task) error {
	log := logger.FromContext(ctx)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := NewTaskStore(tx).Create(ctx, next); err != nil {
			return fmt.Errorf("failed to insert next instance: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO task_tags (task_id, tag_id)
			SELECT $1, tag_id FROM task_tags WHERE task_id = $2
			ON CONFLICT DO NOTHING
		`, next.ID, sourceTaskID); err != nil {
			return fmt.Errorf("failed to copy tag associations: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE tasks
			SET last_recurrence_date = $1, updated_at = $2
			WHERE id = $3
		`, next.DueDate.UTC(), time.Now().UTC(), sourceTaskID)
		if err != nil {
			return fmt.Errorf("failed to update recurrence marker: %w", err)
		}
		return requireRowAffected(result, store.ErrTaskNotFound)
	})
	if err != nil {
		log.Error("recurring instance generation rolled back",
			"source_task_id", sourceTaskID,
			"new_task_id", next.ID,
			"error", err)
		return err
	}

	return nil
}
