// Package consumer implements the generic at-least-once push consumer
// contract shared by the notification and recurring-task services: envelope
// unwrapping, schema validation, consumer-side event type filtering, and
// the tri-state ack/permanent/transient result the broker maps to
// commit/dead-letter/redeliver.
package consumer
