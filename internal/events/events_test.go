package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huzaifanaeem1/todostream/internal/domain"
)

func sampleTask(t *testing.T) *domain.Task {
	t.Helper()

	due := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	freq := domain.FrequencyWeekly
	task, err := domain.NewTask(
		uuid.New(),
		"Water the plants",
		"Front porch and kitchen",
		domain.PriorityHigh,
		&due,
		true,
		&freq,
	)
	require.NoError(t, err)
	return task
}

func TestSnapshotCopiesTaskAndTags(t *testing.T) {
	t.Parallel()

	task := sampleTask(t)
	tags := []string{"home", "chores"}

	snap := Snapshot(task, tags)

	assert.Equal(t, task.ID.String(), snap.ID)
	assert.Equal(t, "Water the plants", snap.Title)
	assert.Equal(t, "high", snap.Priority)
	assert.False(t, snap.IsCompleted)
	assert.True(t, snap.IsRecurring)
	require.NotNil(t, snap.DueDate)
	assert.Equal(t, "2026-03-15", *snap.DueDate)
	require.NotNil(t, snap.RecurrenceFrequency)
	assert.Equal(t, "weekly", *snap.RecurrenceFrequency)

	// Mutating the source slice must not affect the snapshot.
	tags[0] = "mutated"
	assert.Equal(t, []string{"home", "chores"}, snap.Tags)
}

func TestEventWireFormat(t *testing.T) {
	t.Parallel()

	task := sampleTask(t)
	userID := uuid.New()
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	evt := newEvent(TypeTaskCompleted, Snapshot(task, []string{"home"}), userID, "", now)

	body, err := json.Marshal(evt)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(body, &wire))

	assert.NotEmpty(t, wire["event_id"])
	_, err = uuid.Parse(wire["event_id"].(string))
	assert.NoError(t, err, "event_id must be a UUID")

	assert.Equal(t, "task.completed", wire["event_type"])
	assert.Equal(t, "2026-03-14T09:30:00Z", wire["event_timestamp"])
	assert.Equal(t, userID.String(), wire["user_id"])

	taskObj, ok := wire["task"].(map[string]any)
	require.True(t, ok, "task must be a nested object")
	assert.Equal(t, task.ID.String(), taskObj["id"])
	assert.Equal(t, "2026-03-15", taskObj["due_date"])

	_, hasReminderType := wire["reminder_type"]
	assert.False(t, hasReminderType, "reminder_type must be omitted for lifecycle events")
}

func TestReminderEventCarriesReminderType(t *testing.T) {
	t.Parallel()

	task := sampleTask(t)
	evt := newEvent(TypeReminderDueSoon, Snapshot(task, nil), uuid.New(), "due_soon_24h", time.Now())

	body, err := json.Marshal(evt)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(body, &wire))
	assert.Equal(t, "reminder.due_soon", wire["event_type"])
	assert.Equal(t, "due_soon_24h", wire["reminder_type"])
}

func TestEventIDsAreUnique(t *testing.T) {
	t.Parallel()

	task := sampleTask(t)
	snap := Snapshot(task, nil)

	a := newEvent(TypeTaskCreated, snap, uuid.New(), "", time.Now())
	b := newEvent(TypeTaskCreated, snap, uuid.New(), "", time.Now())
	assert.NotEqual(t, a.EventID, b.EventID)
}
