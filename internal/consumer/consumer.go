package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/huzaifanaeem1/todostream/internal/events"
)

// Result is the tri-state outcome of handling a pushed event. The broker
// uses it to decide whether to commit, retry, or dead-letter the message.
type Result int

const (
	// ResultAck means the event was processed (or deliberately skipped);
	// the broker commits and will not redeliver.
	ResultAck Result = iota

	// ResultPermanentFailure means the event is malformed and retrying
	// cannot help; the broker routes it to the dead-letter store.
	ResultPermanentFailure

	// ResultTransientFailure means processing failed for a recoverable
	// reason (e.g. database unavailable); the broker redelivers.
	ResultTransientFailure
)

// String returns a human-readable name for logging.
func (r Result) String() string {
	switch r {
	case ResultAck:
		return "ack"
	case ResultPermanentFailure:
		return "permanent_failure"
	case ResultTransientFailure:
		return "transient_failure"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// SchemaError marks an inbound event as malformed. Handlers return it (via
// Schemaf) for missing type-specific fields; the consumer maps it to a
// permanent failure so the broker never retries the message.
type SchemaError struct {
	msg string
}

func (e *SchemaError) Error() string {
	return e.msg
}

// Schemaf builds a SchemaError with a formatted message.
func Schemaf(format string, args ...any) error {
	return &SchemaError{msg: fmt.Sprintf(format, args...)}
}

// IsSchemaError reports whether err is (or wraps) a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// Handler processes events of a single subscribed type.
type Handler interface {
	// EventType returns the event type this handler subscribes to.
	// Events of other types are acknowledged without processing, because
	// the broker delivers all topic messages to every subscriber and type
	// filtering is consumer-side.
	EventType() events.Type

	// Process runs the business logic for a validated event. Returning a
	// SchemaError signals a permanent failure; any other error is treated
	// as transient and the event will be redelivered.
	Process(ctx context.Context, evt *events.Event) error
}

// Consumer implements the generic at-least-once push consumer contract
// around a single Handler.
type Consumer struct {
	handler Handler
	logger  *slog.Logger
}

// New creates a Consumer for the given handler.
func New(handler Handler, logger *slog.Logger) *Consumer {
	return &Consumer{
		handler: handler,
		logger:  logger.With("component", "event_consumer", "event_type", string(handler.EventType())),
	}
}

// Handle unwraps, validates, and dispatches one pushed message body.
// The returned error carries detail for logging; the Result alone decides
// the response to the broker.
func (c *Consumer) Handle(ctx context.Context, body []byte) (Result, error) {
	evt, err := decodeEnvelope(body)
	if err != nil {
		c.logger.Warn("rejecting malformed event", "error", err)
		return ResultPermanentFailure, err
	}

	if evt.EventType != c.handler.EventType() {
		// Not an error: the topic carries multiple event types and this
		// consumer only handles one of them.
		c.logger.Debug("skipping event of other type",
			"event_id", evt.EventID,
			"received_type", evt.EventType)
		return ResultAck, nil
	}

	if err := c.handler.Process(ctx, evt); err != nil {
		if IsSchemaError(err) {
			c.logger.Warn("rejecting event with invalid schema",
				"event_id", evt.EventID,
				"error", err)
			return ResultPermanentFailure, err
		}
		c.logger.Error("event processing failed, requesting redelivery",
			"event_id", evt.EventID,
			"error", err)
		return ResultTransientFailure, err
	}

	c.logger.Info("event processed", "event_id", evt.EventID)
	return ResultAck, nil
}

// decodeEnvelope extracts and validates the inner event from a pushed
// message body. The broker may wrap the event under a "data" key or deliver
// it bare; both shapes are accepted.
func decodeEnvelope(body []byte) (*events.Event, error) {
	if len(body) == 0 {
		return nil, Schemaf("empty event body")
	}

	var outer map[string]json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil {
		return nil, Schemaf("invalid JSON body: %v", err)
	}

	inner := body
	if data, ok := outer["data"]; ok && len(data) > 0 && data[0] == '{' {
		inner = data
	}

	// Decode against a loose shape first so missing fields are
	// distinguishable from zero values.
	var probe struct {
		EventID   *string          `json:"event_id"`
		EventType *string          `json:"event_type"`
		UserID    *string          `json:"user_id"`
		Task      *json.RawMessage `json:"task"`
	}
	if err := json.Unmarshal(inner, &probe); err != nil {
		return nil, Schemaf("invalid event object: %v", err)
	}

	switch {
	case probe.EventID == nil || *probe.EventID == "":
		return nil, Schemaf("missing event_id in event data")
	case probe.EventType == nil || *probe.EventType == "":
		return nil, Schemaf("missing event_type in event data")
	case probe.UserID == nil || *probe.UserID == "":
		return nil, Schemaf("missing user_id in event data")
	case probe.Task == nil:
		return nil, Schemaf("missing task data in event")
	}

	var evt events.Event
	if err := json.Unmarshal(inner, &evt); err != nil {
		return nil, Schemaf("invalid event object: %v", err)
	}

	if evt.Task.ID == "" {
		return nil, Schemaf("missing task.id in event data")
	}

	return &evt, nil
}
