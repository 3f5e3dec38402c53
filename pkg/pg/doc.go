// Package pg manages the PostgreSQL connection pool lifecycle: connecting
// with retries, classifying driver errors, applying goose migrations, and
// exposing a health check probe.
package pg
