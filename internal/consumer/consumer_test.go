package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huzaifanaeem1/todostream/internal/events"
)

// recordingHandler captures processed events and returns a scripted error.
type recordingHandler struct {
	eventType events.Type
	err       error
	processed []*events.Event
}

func (h *recordingHandler) EventType() events.Type { return h.eventType }

func (h *recordingHandler) Process(_ context.Context, evt *events.Event) error {
	h.processed = append(h.processed, evt)
	return h.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validEventJSON(t *testing.T, eventType events.Type) []byte {
	t.Helper()

	evt := events.Event{
		EventID:        uuid.New().String(),
		EventType:      eventType,
		EventTimestamp: "2026-03-14T09:30:00Z",
		UserID:         uuid.New().String(),
		Task: events.TaskSnapshot{
			ID:       uuid.New().String(),
			Title:    "Take out trash",
			Priority: "medium",
		},
	}
	body, err := json.Marshal(evt)
	require.NoError(t, err)
	return body
}

func TestHandleAcksValidEvent(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{eventType: events.TypeTaskCompleted}
	c := New(h, discardLogger())

	result, err := c.Handle(context.Background(), validEventJSON(t, events.TypeTaskCompleted))

	assert.Equal(t, ResultAck, result)
	assert.NoError(t, err)
	require.Len(t, h.processed, 1)
	assert.Equal(t, events.TypeTaskCompleted, h.processed[0].EventType)
}

func TestHandleUnwrapsDataEnvelope(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{eventType: events.TypeTaskCompleted}
	c := New(h, discardLogger())

	inner := validEventJSON(t, events.TypeTaskCompleted)
	wrapped := []byte(fmt.Sprintf(`{"id":"broker-msg-1","datacontenttype":"application/json","data":%s}`, inner))

	result, err := c.Handle(context.Background(), wrapped)

	assert.Equal(t, ResultAck, result)
	assert.NoError(t, err)
	require.Len(t, h.processed, 1)
}

func TestHandleAcksOtherEventTypesWithoutProcessing(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{eventType: events.TypeTaskCompleted}
	c := New(h, discardLogger())

	result, err := c.Handle(context.Background(), validEventJSON(t, events.TypeTaskCreated))

	assert.Equal(t, ResultAck, result, "foreign event types are acknowledged, not dead-lettered")
	assert.NoError(t, err)
	assert.Empty(t, h.processed, "handler must not run for foreign event types")
}

func TestHandleRejectsMalformedBodies(t *testing.T) {
	t.Parallel()

	missingField := func(field string) []byte {
		var m map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(validEventJSON(t, events.TypeTaskCompleted), &m))
		delete(m, field)
		out, err := json.Marshal(m)
		require.NoError(t, err)
		return out
	}

	tests := []struct {
		name string
		body []byte
	}{
		{name: "empty body", body: nil},
		{name: "invalid JSON", body: []byte("{not json")},
		{name: "JSON array", body: []byte(`[1,2,3]`)},
		{name: "missing event_id", body: missingField("event_id")},
		{name: "missing event_type", body: missingField("event_type")},
		{name: "missing user_id", body: missingField("user_id")},
		{name: "missing task", body: missingField("task")},
		{name: "missing task id", body: []byte(`{"event_id":"e","event_type":"task.completed","user_id":"u","task":{}}`)},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := &recordingHandler{eventType: events.TypeTaskCompleted}
			c := New(h, discardLogger())

			result, err := c.Handle(context.Background(), tc.body)

			assert.Equal(t, ResultPermanentFailure, result)
			assert.True(t, IsSchemaError(err), "expected schema error, got %v", err)
			assert.Empty(t, h.processed)
		})
	}
}

func TestHandleMapsHandlerErrors(t *testing.T) {
	t.Parallel()

	t.Run("schema error is permanent", func(t *testing.T) {
		t.Parallel()

		h := &recordingHandler{eventType: events.TypeTaskCompleted, err: Schemaf("missing due_date")}
		c := New(h, discardLogger())

		result, err := c.Handle(context.Background(), validEventJSON(t, events.TypeTaskCompleted))
		assert.Equal(t, ResultPermanentFailure, result)
		assert.True(t, IsSchemaError(err))
	})

	t.Run("other errors are transient", func(t *testing.T) {
		t.Parallel()

		h := &recordingHandler{eventType: events.TypeTaskCompleted, err: errors.New("database unavailable")}
		c := New(h, discardLogger())

		result, err := c.Handle(context.Background(), validEventJSON(t, events.TypeTaskCompleted))
		assert.Equal(t, ResultTransientFailure, result)
		assert.Error(t, err)
		assert.False(t, IsSchemaError(err))
	})

	t.Run("wrapped schema error is permanent", func(t *testing.T) {
		t.Parallel()

		h := &recordingHandler{
			eventType: events.TypeTaskCompleted,
			err:       fmt.Errorf("processing: %w", Schemaf("bad field")),
		}
		c := New(h, discardLogger())

		result, _ := c.Handle(context.Background(), validEventJSON(t, events.TypeTaskCompleted))
		assert.Equal(t, ResultPermanentFailure, result)
	})
}

func TestResultString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ack", ResultAck.String())
	assert.Equal(t, "permanent_failure", ResultPermanentFailure.String())
	assert.Equal(t, "transient_failure", ResultTransientFailure.String())
}
