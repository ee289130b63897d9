package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/huzaifanaeem1/todostream/internal/domain"
	"github.com/huzaifanaeem1/todostream/internal/events"
	"github.com/huzaifanaeem1/todostream/internal/platform/logger"
	"github.com/huzaifanaeem1/todostream/internal/store"
)

// EventPublisher is the slice of the events.Publisher surface the service
// layer needs. Publishing is fire-and-forget: implementations must never
// block or fail the caller's mutation.
type EventPublisher interface {
	Publish(eventType events.Type, snap events.TaskSnapshot, userID uuid.UUID)
	PublishReminder(snap events.TaskSnapshot, userID uuid.UUID, reminderType string)
}

// TaskWithTags bundles a task with its resolved tag names, which is the
// shape both the API layer and event snapshots consume.
type TaskWithTags struct {
	Task *domain.Task
	Tags []string
}

// CreateTaskParams carries the fields for creating a task.
type CreateTaskParams struct {
	Title       string
	Description string
	Priority    domain.Priority
	DueDate     *time.Time
	IsRecurring bool
	Frequency   *domain.RecurrenceFrequency
	Tags        []string
}

// UpdateTaskParams carries the fields for a full task update.
type UpdateTaskParams struct {
	Title       string
	Description string
	IsCompleted bool
	Priority    domain.Priority
	DueDate     *time.Time
	IsRecurring bool
	Frequency   *domain.RecurrenceFrequency
	Tags        []string
}

// TaskService defines task CRUD operations with lifecycle event publishing.
type TaskService interface {
	CreateTask(ctx context.Context, userID uuid.UUID, params CreateTaskParams) (*TaskWithTags, error)
	GetTask(ctx context.Context, taskID, userID uuid.UUID) (*TaskWithTags, error)
	ListTasks(ctx context.Context, userID uuid.UUID) ([]*TaskWithTags, error)
	UpdateTask(ctx context.Context, taskID, userID uuid.UUID, params UpdateTaskParams) (*TaskWithTags, error)
	CompleteTask(ctx context.Context, taskID, userID uuid.UUID) (*TaskWithTags, error)
	DeleteTask(ctx context.Context, taskID, userID uuid.UUID) error
}

// taskService is the production TaskService implementation.
type taskService struct {
	tasks     store.TaskStore
	tags      store.TagStore
	publisher EventPublisher
}

// NewTaskService creates a TaskService over the given stores and publisher.
func NewTaskService(tasks store.TaskStore, tags store.TagStore, publisher EventPublisher) TaskService {
	return &taskService{
		tasks:     tasks,
		tags:      tags,
		publisher: publisher,
	}
}

// CreateTask creates a task with its tag set and publishes task.created.
func (s *taskService) CreateTask(ctx context.Context, userID uuid.UUID, params CreateTaskParams) (*TaskWithTags, error) {
	task, err := domain.NewTask(
		userID,
		params.Title,
		params.Description,
		params.Priority,
		params.DueDate,
		params.IsRecurring,
		params.Frequency,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	tagNames, err := s.applyTags(ctx, task, params.Tags)
	if err != nil {
		return nil, err
	}

	result := &TaskWithTags{Task: task, Tags: tagNames}
	s.publisher.Publish(events.TypeTaskCreated, events.Snapshot(task, tagNames), userID)
	return result, nil
}

// GetTask retrieves a task with its tag names.
func (s *taskService) GetTask(ctx context.Context, taskID, userID uuid.UUID) (*TaskWithTags, error) {
	task, err := s.tasks.GetByID(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	return s.withTags(ctx, task)
}

// ListTasks retrieves the user's tasks with their tag names.
func (s *taskService) ListTasks(ctx context.Context, userID uuid.UUID) ([]*TaskWithTags, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	results := make([]*TaskWithTags, 0, len(tasks))
	for _, task := range tasks {
		withTags, err := s.withTags(ctx, task)
		if err != nil {
			return nil, err
		}
		results = append(results, withTags)
	}
	return results, nil
}

// UpdateTask applies a full update and publishes task.updated, plus
// task.completed if the update transitioned the task to completed.
func (s *taskService) UpdateTask(ctx context.Context, taskID, userID uuid.UUID, params UpdateTaskParams) (*TaskWithTags, error) {
	task, err := s.tasks.GetByID(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	wasCompleted := task.IsCompleted

	task.Title = params.Title
	task.Description = params.Description
	task.IsCompleted = params.IsCompleted
	task.Priority = params.Priority
	task.DueDate = params.DueDate
	task.IsRecurring = params.IsRecurring
	task.RecurrenceFrequency = params.Frequency
	task.UpdatedAt = time.Now().UTC()

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	tagNames, err := s.applyTags(ctx, task, params.Tags)
	if err != nil {
		return nil, err
	}

	snap := events.Snapshot(task, tagNames)
	s.publisher.Publish(events.TypeTaskUpdated, snap, userID)
	if !wasCompleted && task.IsCompleted {
		s.publisher.Publish(events.TypeTaskCompleted, snap, userID)
	}

	return &TaskWithTags{Task: task, Tags: tagNames}, nil
}

// CompleteTask marks a task completed and publishes task.completed.
// Completing an already-completed task is a no-op that publishes nothing.
func (s *taskService) CompleteTask(ctx context.Context, taskID, userID uuid.UUID) (*TaskWithTags, error) {
	log := logger.FromContext(ctx)

	task, err := s.tasks.GetByID(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	withTags, err := s.withTags(ctx, task)
	if err != nil {
		return nil, err
	}

	if task.IsCompleted {
		log.Debug("task already completed", "task_id", taskID)
		return withTags, nil
	}

	task.IsCompleted = true
	task.UpdatedAt = time.Now().UTC()
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	s.publisher.Publish(events.TypeTaskCompleted, events.Snapshot(task, withTags.Tags), userID)
	return withTags, nil
}

// DeleteTask removes a task and publishes task.deleted with a snapshot
// captured before the delete.
func (s *taskService) DeleteTask(ctx context.Context, taskID, userID uuid.UUID) error {
	task, err := s.tasks.GetByID(ctx, taskID, userID)
	if err != nil {
		return err
	}

	withTags, err := s.withTags(ctx, task)
	if err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, taskID, userID); err != nil {
		return err
	}

	s.publisher.Publish(events.TypeTaskDeleted, events.Snapshot(task, withTags.Tags), userID)
	return nil
}

// applyTags ensures the named tags exist, binds them to the task, and
// returns the resolved names.
func (s *taskService) applyTags(ctx context.Context, task *domain.Task, names []string) ([]string, error) {
	tags, err := s.tags.EnsureTags(ctx, task.UserID, names)
	if err != nil {
		return nil, err
	}

	tagIDs := make([]uuid.UUID, len(tags))
	tagNames := make([]string, len(tags))
	for i, tag := range tags {
		tagIDs[i] = tag.ID
		tagNames[i] = tag.Name
	}

	if err := s.tags.ReplaceTaskTags(ctx, task.ID, tagIDs); err != nil {
		return nil, err
	}

	return tagNames, nil
}

func (s *taskService) withTags(ctx context.Context, task *domain.Task) (*TaskWithTags, error) {
	names, err := s.tags.NamesForTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	return &TaskWithTags{Task: task, Tags: names}, nil
}
