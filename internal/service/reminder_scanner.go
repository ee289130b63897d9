package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/huzaifanaeem1/todostream/internal/events"
	"github.com/huzaifanaeem1/todostream/internal/store"
)

// ReminderTypeDueSoon labels reminders for tasks due within the scan window.
const ReminderTypeDueSoon = "due_soon_24h"

// ReminderScanner periodically scans for tasks approaching their due date
// and publishes a reminder event for each one. A task is reminded at most
// once per due date within a single process lifetime; cross-restart
// de-duplication is the consumer's job.
type ReminderScanner struct {
	tasks     store.TaskStore
	tags      store.TagStore
	publisher EventPublisher
	logger    *slog.Logger

	interval time.Duration
	window   time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	reminded map[uuid.UUID]time.Time
}

// NewReminderScanner creates a scanner that checks every interval for
// tasks due within window.
func NewReminderScanner(
	tasks store.TaskStore,
	tags store.TagStore,
	publisher EventPublisher,
	logger *slog.Logger,
	interval, window time.Duration,
) *ReminderScanner {
	ctx, cancel := context.WithCancel(context.Background())
	return &ReminderScanner{
		tasks:     tasks,
		tags:      tags,
		publisher: publisher,
		logger:    logger.With("component", "reminder_scanner"),
		interval:  interval,
		window:    window,
		ctx:       ctx,
		cancel:    cancel,
		reminded:  make(map[uuid.UUID]time.Time),
	}
}

// Start launches the background scan loop.
func (s *ReminderScanner) Start() {
	s.wg.Add(1)
	go s.run()
	s.logger.Info("reminder scanner started",
		"interval", s.interval.String(),
		"window", s.window.String())
}

// Stop terminates the scan loop and waits for it to exit.
func (s *ReminderScanner) Stop() {
	s.cancel()
	s.wg.Wait()
	s.logger.Info("reminder scanner stopped")
}

func (s *ReminderScanner) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.scan()
		}
	}
}

// scan finds tasks due within the window and publishes a reminder for
// each one not yet reminded for its current due date.
func (s *ReminderScanner) scan() {
	now := time.Now().UTC()
	due, err := s.tasks.DueWithin(s.ctx, now, s.window)
	if err != nil {
		s.logger.Error("due task scan failed", "error", err)
		return
	}

	s.pruneReminded(now)

	for _, task := range due {
		if task.DueDate == nil {
			continue
		}
		if s.alreadyReminded(task.ID, *task.DueDate) {
			continue
		}

		tagNames, err := s.tags.NamesForTask(s.ctx, task.ID)
		if err != nil {
			s.logger.Error("tag lookup failed for due task",
				"task_id", task.ID,
				"error", err)
			continue
		}

		s.publisher.PublishReminder(events.Snapshot(task, tagNames), task.UserID, ReminderTypeDueSoon)
		s.markReminded(task.ID, *task.DueDate)

		s.logger.Debug("reminder published",
			"task_id", task.ID,
			"due_date", task.DueDate.Format(events.DateLayout))
	}
}

func (s *ReminderScanner) alreadyReminded(taskID uuid.UUID, due time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sent, ok := s.reminded[taskID]
	return ok && sent.Equal(due)
}

func (s *ReminderScanner) markReminded(taskID uuid.UUID, due time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminded[taskID] = due
}

// pruneReminded drops entries whose due date has passed out of the scan
// window. Those tasks can never match DueWithin again for that due date,
// so keeping them would only grow the map for the process lifetime.
func (s *ReminderScanner) pruneReminded(now time.Time) {
	cutoff := now.Truncate(24 * time.Hour)

	s.mu.Lock()
	defer s.mu.Unlock()
	for taskID, due := range s.reminded {
		if due.Before(cutoff) {
			delete(s.reminded, taskID)
		}
	}
}
