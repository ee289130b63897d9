// Package events implements the publisher side of the task lifecycle event
// flow: the wire-level event payload, the bounded in-memory retry buffer,
// and the fire-and-forget Publisher with its background retry loop.
//
// Delivery is at-least-once from the publisher's perspective: a buffered
// event keeps its event_id across retries so consumers can deduplicate, and
// the buffer's drop-oldest overflow policy bounds memory at the cost of
// losing the oldest undelivered events under sustained broker outage.
package events
