package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huzaifanaeem1/todostream/internal/domain"
	"github.com/huzaifanaeem1/todostream/internal/events"
	"github.com/huzaifanaeem1/todostream/internal/store"
)

// fakeTaskStore is an in-memory store.TaskStore.
type fakeTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
	err   error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (s *fakeTaskStore) Create(_ context.Context, task *domain.Task) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *task
	s.tasks[task.ID] = &copy
	return nil
}

func (s *fakeTaskStore) GetByID(_ context.Context, taskID, userID uuid.UUID) (*domain.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return nil, store.ErrTaskNotFound
	}
	copy := *task
	return &copy, nil
}

func (s *fakeTaskStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Task
	for _, task := range s.tasks {
		if task.UserID == userID {
			copy := *task
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (s *fakeTaskStore) Update(_ context.Context, task *domain.Task) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return store.ErrTaskNotFound
	}
	copy := *task
	s.tasks[task.ID] = &copy
	return nil
}

func (s *fakeTaskStore) Delete(_ context.Context, taskID, userID uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, taskID)
	return nil
}

func (s *fakeTaskStore) DueWithin(_ context.Context, now time.Time, window time.Duration) ([]*domain.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Task
	cutoff := now.Add(window)
	for _, task := range s.tasks {
		if task.IsCompleted || task.DueDate == nil {
			continue
		}
		if !task.DueDate.Before(now.Truncate(24*time.Hour)) && !task.DueDate.After(cutoff) {
			copy := *task
			out = append(out, &copy)
		}
	}
	return out, nil
}

// fakeTagStore is an in-memory store.TagStore keyed by tag name.
type fakeTagStore struct {
	mu       sync.Mutex
	byName   map[string]*domain.Tag
	taskTags map[uuid.UUID][]uuid.UUID
	err      error
}

func newFakeTagStore() *fakeTagStore {
	return &fakeTagStore{
		byName:   make(map[string]*domain.Tag),
		taskTags: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (s *fakeTagStore) EnsureTags(_ context.Context, userID uuid.UUID, names []string) ([]*domain.Tag, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	var out []*domain.Tag
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		tag, ok := s.byName[name]
		if !ok {
			tag = &domain.Tag{ID: uuid.New(), UserID: userID, Name: name}
			s.byName[name] = tag
		}
		out = append(out, tag)
	}
	return out, nil
}

func (s *fakeTagStore) ReplaceTaskTags(_ context.Context, taskID uuid.UUID, tagIDs []uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskTags[taskID] = append([]uuid.UUID(nil), tagIDs...)
	return nil
}

func (s *fakeTagStore) NamesForTask(_ context.Context, taskID uuid.UUID) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for _, id := range s.taskTags[taskID] {
		for _, tag := range s.byName {
			if tag.ID == id {
				names = append(names, tag.Name)
			}
		}
	}
	return names, nil
}

// publishedEvent is one captured fire-and-forget publish.
type publishedEvent struct {
	eventType    events.Type
	snapshot     events.TaskSnapshot
	userID       uuid.UUID
	reminderType string
}

// publisherSink records published events for assertions.
type publisherSink struct {
	mu        sync.Mutex
	published []publishedEvent
}

func (p *publisherSink) Publish(eventType events.Type, snap events.TaskSnapshot, userID uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, publishedEvent{eventType: eventType, snapshot: snap, userID: userID})
}

func (p *publisherSink) PublishReminder(snap events.TaskSnapshot, userID uuid.UUID, reminderType string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, publishedEvent{
		eventType:    events.TypeReminderDueSoon,
		snapshot:     snap,
		userID:       userID,
		reminderType: reminderType,
	})
}

func (p *publisherSink) events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishedEvent, len(p.published))
	copy(out, p.published)
	return out
}

func (p *publisherSink) types() []events.Type {
	var out []events.Type
	for _, evt := range p.events() {
		out = append(out, evt.eventType)
	}
	return out
}

func newTestTaskService() (TaskService, *fakeTaskStore, *fakeTagStore, *publisherSink) {
	tasks := newFakeTaskStore()
	tags := newFakeTagStore()
	sink := &publisherSink{}
	return NewTaskService(tasks, tags, sink), tasks, tags, sink
}

func TestCreateTaskPublishesCreatedEvent(t *testing.T) {
	t.Parallel()

	svc, _, _, sink := newTestTaskService()
	userID := uuid.New()

	result, err := svc.CreateTask(context.Background(), userID, CreateTaskParams{
		Title:    "Buy milk",
		Priority: domain.PriorityMedium,
		Tags:     []string{"errands", "shopping"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Buy milk", result.Task.Title)
	assert.Equal(t, []string{"errands", "shopping"}, result.Tags)

	published := sink.events()
	require.Len(t, published, 1)
	assert.Equal(t, events.TypeTaskCreated, published[0].eventType)
	assert.Equal(t, userID, published[0].userID)
	assert.Equal(t, result.Task.ID.String(), published[0].snapshot.ID)
	assert.Equal(t, []string{"errands", "shopping"}, published[0].snapshot.Tags)
}

func TestCreateTaskRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	svc, _, _, sink := newTestTaskService()

	_, err := svc.CreateTask(context.Background(), uuid.New(), CreateTaskParams{
		Title:    "",
		Priority: domain.PriorityMedium,
	})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.Empty(t, sink.events(), "nothing is published for a failed create")
}

func TestUpdateTaskPublishesUpdatedEvent(t *testing.T) {
	t.Parallel()

	svc, _, _, sink := newTestTaskService()
	userID := uuid.New()

	created, err := svc.CreateTask(context.Background(), userID, CreateTaskParams{
		Title:    "Draft report",
		Priority: domain.PriorityLow,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateTask(context.Background(), created.Task.ID, userID, UpdateTaskParams{
		Title:    "Draft quarterly report",
		Priority: domain.PriorityHigh,
		Tags:     []string{"work"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Draft quarterly report", updated.Task.Title)
	assert.Equal(t, domain.PriorityHigh, updated.Task.Priority)

	assert.Equal(t, []events.Type{events.TypeTaskCreated, events.TypeTaskUpdated}, sink.types())
}

func TestUpdateTaskCompletionTransitionAlsoPublishesCompleted(t *testing.T) {
	t.Parallel()

	svc, _, _, sink := newTestTaskService()
	userID := uuid.New()

	created, err := svc.CreateTask(context.Background(), userID, CreateTaskParams{
		Title:    "Mow the lawn",
		Priority: domain.PriorityMedium,
	})
	require.NoError(t, err)

	_, err = svc.UpdateTask(context.Background(), created.Task.ID, userID, UpdateTaskParams{
		Title:       "Mow the lawn",
		IsCompleted: true,
		Priority:    domain.PriorityMedium,
	})
	require.NoError(t, err)

	assert.Equal(t,
		[]events.Type{events.TypeTaskCreated, events.TypeTaskUpdated, events.TypeTaskCompleted},
		sink.types(),
		"completing via update publishes both updated and completed")

	// Updating an already-completed task must not publish completed again.
	_, err = svc.UpdateTask(context.Background(), created.Task.ID, userID, UpdateTaskParams{
		Title:       "Mow the lawn and trim edges",
		IsCompleted: true,
		Priority:    domain.PriorityMedium,
	})
	require.NoError(t, err)
	assert.Equal(t,
		[]events.Type{events.TypeTaskCreated, events.TypeTaskUpdated, events.TypeTaskCompleted, events.TypeTaskUpdated},
		sink.types())
}

func TestCompleteTaskPublishesCompletedOnce(t *testing.T) {
	t.Parallel()

	svc, _, _, sink := newTestTaskService()
	userID := uuid.New()

	created, err := svc.CreateTask(context.Background(), userID, CreateTaskParams{
		Title:    "File taxes",
		Priority: domain.PriorityHigh,
	})
	require.NoError(t, err)

	completed, err := svc.CompleteTask(context.Background(), created.Task.ID, userID)
	require.NoError(t, err)
	assert.True(t, completed.Task.IsCompleted)

	// Re-completing is a no-op and publishes nothing new.
	_, err = svc.CompleteTask(context.Background(), created.Task.ID, userID)
	require.NoError(t, err)

	assert.Equal(t, []events.Type{events.TypeTaskCreated, events.TypeTaskCompleted}, sink.types())
}

func TestDeleteTaskPublishesSnapshotFromBeforeDelete(t *testing.T) {
	t.Parallel()

	svc, tasks, _, sink := newTestTaskService()
	userID := uuid.New()

	created, err := svc.CreateTask(context.Background(), userID, CreateTaskParams{
		Title:    "Cancel subscription",
		Priority: domain.PriorityLow,
		Tags:     []string{"finance"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(context.Background(), created.Task.ID, userID))

	_, err = tasks.GetByID(context.Background(), created.Task.ID, userID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	published := sink.events()
	require.Len(t, published, 2)
	deleted := published[1]
	assert.Equal(t, events.TypeTaskDeleted, deleted.eventType)
	assert.Equal(t, "Cancel subscription", deleted.snapshot.Title)
	assert.Equal(t, []string{"finance"}, deleted.snapshot.Tags)
}

func TestTaskOperationsAreUserScoped(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestTaskService()
	owner := uuid.New()
	intruder := uuid.New()

	created, err := svc.CreateTask(context.Background(), owner, CreateTaskParams{
		Title:    "Private task",
		Priority: domain.PriorityMedium,
	})
	require.NoError(t, err)

	_, err = svc.GetTask(context.Background(), created.Task.ID, intruder)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	err = svc.DeleteTask(context.Background(), created.Task.ID, intruder)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskServiceStoreErrorsPropagateWithoutPublishing(t *testing.T) {
	t.Parallel()

	tasks := newFakeTaskStore()
	tasks.err = errors.New("connection reset")
	sink := &publisherSink{}
	svc := NewTaskService(tasks, newFakeTagStore(), sink)

	_, err := svc.CreateTask(context.Background(), uuid.New(), CreateTaskParams{
		Title:    "Doomed task",
		Priority: domain.PriorityMedium,
	})
	require.Error(t, err)
	assert.Empty(t, sink.events())
}
