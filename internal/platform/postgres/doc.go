// Package postgres provides PostgreSQL implementations of the store
// interfaces, plus embedded schema migrations. All queries are
// parameterized; no identifiers or values are ever interpolated into
// query text.
package postgres
