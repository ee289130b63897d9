// Package store defines persistence interfaces for the application's
// entities along with shared database plumbing: the DBTX abstraction, the
// transaction helper, and the store error taxonomy. Concrete implementations
// live in internal/platform/postgres.
package store
