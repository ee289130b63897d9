// Package recurrence implements the recurring-task service's business
// logic: next-due-date arithmetic and the idempotent generation of the next
// task instance from task.completed events, atomically with the persistent
// last_recurrence_date marker.
package recurrence
