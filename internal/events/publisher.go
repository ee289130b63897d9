package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Default publisher timings.
const (
	DefaultPublishTimeout = 5 * time.Second
	DefaultRetryInterval  = 5 * time.Second
)

// Config holds the publisher's broker settings.
type Config struct {
	// BrokerURL is the base URL of the pub/sub sidecar,
	// e.g. "http://localhost:3500".
	BrokerURL string

	// PubSubName is the name of the pub/sub component on the sidecar.
	PubSubName string

	// TaskEventsTopic receives task lifecycle events.
	TaskEventsTopic string

	// RemindersTopic receives reminder.due_soon events.
	RemindersTopic string

	// PublishTimeout bounds a single delivery attempt.
	PublishTimeout time.Duration

	// RetryInterval is the pause between retry drain passes.
	RetryInterval time.Duration

	// BufferCapacity bounds the in-memory retry buffer.
	BufferCapacity int
}

// Publisher delivers task lifecycle events to the pub/sub channel.
//
// Publish is fire-and-forget: the delivery attempt runs detached from the
// caller, and failures fall back to the in-memory Buffer plus a background
// retry loop. A publish failure is never surfaced to the entity-mutation
// path. The retry buffer is not persisted; events buffered at crash time
// are lost, which is an accepted trade-off.
type Publisher struct {
	cfg    Config
	client *http.Client
	buffer *Buffer
	logger *slog.Logger
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu guards retrying. At most one retry loop runs per publisher; the
	// loop exits once a drain pass leaves the buffer empty and is restarted
	// lazily by the next buffered failure.
	mu       sync.Mutex
	retrying bool
}

// NewPublisher creates a Publisher with the given configuration.
func NewPublisher(cfg Config, logger *slog.Logger) *Publisher {
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = DefaultPublishTimeout
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Publisher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.PublishTimeout},
		buffer: NewBuffer(cfg.BufferCapacity),
		logger: logger.With("component", "event_publisher"),
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Publish builds and dispatches a task lifecycle event. It returns
// immediately; delivery happens on a detached goroutine.
func (p *Publisher) Publish(eventType Type, snap TaskSnapshot, userID uuid.UUID) {
	p.dispatch(newEvent(eventType, snap, userID, "", p.now()))
}

// PublishReminder builds and dispatches a reminder.due_soon event carrying
// the given reminder type.
func (p *Publisher) PublishReminder(snap TaskSnapshot, userID uuid.UUID, reminderType string) {
	p.dispatch(newEvent(TypeReminderDueSoon, snap, userID, reminderType, p.now()))
}

// Buffered returns the number of events currently awaiting retry.
func (p *Publisher) Buffered() int {
	return p.buffer.Len()
}

// Close stops the retry loop and waits for in-flight deliveries to settle.
// Events still buffered at close time are discarded.
func (p *Publisher) Close() {
	p.cancel()
	p.wg.Wait()
}

func (p *Publisher) dispatch(evt Event) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.deliver(evt)
	}()
}

// deliver makes one synchronous delivery attempt and falls back to the
// retry buffer on any failure.
func (p *Publisher) deliver(evt Event) {
	if err := p.send(evt); err != nil {
		dropped := p.buffer.Append(evt)
		p.logger.Warn("event delivery failed, buffered for retry",
			"event_id", evt.EventID,
			"event_type", evt.EventType,
			"buffer_len", p.buffer.Len(),
			"error", err)
		if dropped {
			p.logger.Warn("retry buffer full, dropped oldest event",
				"buffer_capacity", p.buffer.capacity,
				"total_dropped", p.buffer.Dropped())
		}
		p.ensureRetryLoop()
		return
	}

	p.logger.Info("event published",
		"event_id", evt.EventID,
		"event_type", evt.EventType)
}

// send posts the event to the broker's publish endpoint for its topic.
// Success is an HTTP 200 or 204 acknowledgement.
func (p *Publisher) send(evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.PublishTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.publishURL(evt.EventType), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("publish request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("broker rejected event: status %d", resp.StatusCode)
	}

	return nil
}

// publishURL builds the sidecar publish endpoint for the event's topic.
func (p *Publisher) publishURL(eventType Type) string {
	return fmt.Sprintf("%s/v1.0/publish/%s/%s", p.cfg.BrokerURL, p.cfg.PubSubName, p.topicFor(eventType))
}

func (p *Publisher) topicFor(eventType Type) string {
	if eventType == TypeReminderDueSoon {
		return p.cfg.RemindersTopic
	}
	return p.cfg.TaskEventsTopic
}

// ensureRetryLoop starts the background retry loop if it is not running.
func (p *Publisher) ensureRetryLoop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.retrying {
		return
	}
	p.retrying = true
	p.wg.Add(1)
	go p.retryLoop()
}

// retryLoop drains the whole buffer every RetryInterval, re-attempts
// delivery in FIFO order, and re-enqueues only the failures, preserving
// their event IDs. It exits once a pass leaves the buffer empty; the exit
// check holds the same lock as ensureRetryLoop so a concurrent publish
// failure either keeps this loop alive or starts a fresh one.
func (p *Publisher) retryLoop() {
	defer p.wg.Done()

	p.logger.Info("retry loop started", "buffer_len", p.buffer.Len())

	for {
		select {
		case <-p.ctx.Done():
			p.mu.Lock()
			p.retrying = false
			p.mu.Unlock()
			p.logger.Info("retry loop stopped", "buffer_len", p.buffer.Len())
			return
		case <-time.After(p.cfg.RetryInterval):
		}

		pending := p.buffer.DrainAll()
		var failed int
		for _, evt := range pending {
			if err := p.send(evt); err != nil {
				p.buffer.Append(evt)
				failed++
				continue
			}
			p.logger.Info("buffered event published",
				"event_id", evt.EventID,
				"event_type", evt.EventType)
		}

		if failed > 0 {
			p.logger.Warn("retry pass incomplete, will retry",
				"failed", failed,
				"retry_interval", p.cfg.RetryInterval)
		}

		p.mu.Lock()
		if p.buffer.Len() == 0 {
			p.retrying = false
			p.mu.Unlock()
			p.logger.Info("all buffered events published, retry loop exiting")
			return
		}
		p.mu.Unlock()
	}
}

// retryLoopActive reports whether the retry loop is currently running.
func (p *Publisher) retryLoopActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.retrying
}
