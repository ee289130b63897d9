package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/huzaifanaeem1/todostream/internal/domain"
	"github.com/huzaifanaeem1/todostream/internal/platform/logger"
	"github.com/huzaifanaeem1/todostream/internal/store"
)

// taskColumns is the column list shared by all task queries, in scan order.
const taskColumns = `id, user_id, title, description, is_completed, priority,
	due_date, is_recurring, recurrence_frequency, last_recurrence_date,
	created_at, updated_at`

// TaskStore implements store.TaskStore using PostgreSQL.
type TaskStore struct {
	db store.DBTX
}

// Ensure TaskStore implements the interface.
var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore creates a new TaskStore.
func NewTaskStore(db store.DBTX) *TaskStore {
	return &TaskStore{db: db}
}

// WithTx returns a TaskStore bound to the given transaction.
func (s *TaskStore) WithTx(tx *sql.Tx) *TaskStore {
	return &TaskStore{db: tx}
}

// Create saves a new task.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.IsCompleted,
		string(task.Priority),
		nullableDate(task.DueDate),
		task.IsRecurring,
		nullableFrequency(task.RecurrenceFrequency),
		nullableDate(task.LastRecurrenceDate),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			"task_id", task.ID,
			"error", err)
		return mapError(err, store.ErrTaskNotFound)
	}

	return nil
}

// GetByID retrieves a task scoped to its owner.
func (s *TaskStore) GetByID(ctx context.Context, taskID, userID uuid.UUID) (*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`
	row := s.db.QueryRowContext(ctx, query, taskID, userID)
	task, err := scanTask(row)
	if err != nil {
		return nil, mapError(err, store.ErrTaskNotFound)
	}
	return task, nil
}

// ListByUser retrieves all tasks owned by the user, newest first.
func (s *TaskStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// Update persists the mutable fields of a task.
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, is_completed = $3, priority = $4,
			due_date = $5, is_recurring = $6, recurrence_frequency = $7,
			last_recurrence_date = $8, updated_at = $9
		WHERE id = $10 AND user_id = $11
	`
	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		task.IsCompleted,
		string(task.Priority),
		nullableDate(task.DueDate),
		task.IsRecurring,
		nullableFrequency(task.RecurrenceFrequency),
		nullableDate(task.LastRecurrenceDate),
		time.Now().UTC(),
		task.ID,
		task.UserID,
	)
	if err != nil {
		log.Error("failed to update task",
			"task_id", task.ID,
			"error", err)
		return mapError(err, store.ErrTaskNotFound)
	}

	return requireRowAffected(result, store.ErrTaskNotFound)
}

// Delete removes a task scoped to its owner.
func (s *TaskStore) Delete(ctx context.Context, taskID, userID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`, taskID, userID)
	if err != nil {
		return mapError(err, store.ErrTaskNotFound)
	}
	return requireRowAffected(result, store.ErrTaskNotFound)
}

// DueWithin retrieves incomplete tasks due between now and now+window.
// due_date is a DATE column, so both bounds are compared as dates: a task
// due today matches a scan running at any time of day.
func (s *TaskStore) DueWithin(ctx context.Context, now time.Time, window time.Duration) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE is_completed = FALSE
		  AND due_date IS NOT NULL
		  AND due_date >= $1::date
		  AND due_date <= $2::date
		ORDER BY due_date ASC
	`
	rows, err := s.db.QueryContext(ctx, query, now.UTC(), now.UTC().Add(window))
	if err != nil {
		return nil, fmt.Errorf("failed to query due tasks: %w", err)
	}
	defer rows.Close()

	return collectTasks(rows)
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanTask.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task      domain.Task
		priority  string
		dueDate   sql.NullTime
		frequency sql.NullString
		marker    sql.NullTime
	)

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.IsCompleted,
		&priority,
		&dueDate,
		&task.IsRecurring,
		&frequency,
		&marker,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Priority = domain.Priority(priority)
	if dueDate.Valid {
		d := dueDate.Time.UTC()
		task.DueDate = &d
	}
	if frequency.Valid {
		f := domain.RecurrenceFrequency(frequency.String)
		task.RecurrenceFrequency = &f
	}
	if marker.Valid {
		m := marker.Time.UTC()
		task.LastRecurrenceDate = &m
	}

	return &task, nil
}

func collectTasks(rows *sql.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}
	return tasks, nil
}

func requireRowAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

func nullableDate(d *time.Time) any {
	if d == nil {
		return nil
	}
	return d.UTC()
}

func nullableFrequency(f *domain.RecurrenceFrequency) any {
	if f == nil {
		return nil
	}
	return string(*f)
}
