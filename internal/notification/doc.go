// Package notification implements the notification service's business
// logic: logging due-soon reminders exactly once per event ID, deduplicated
// through a bounded, TTL'd in-memory seen-store.
package notification
