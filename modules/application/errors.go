package application

import "errors"

var (
	// ErrApplicationNotFound covers a wrong id, a different owner, or a
	// soft-deleted row. The cases are indistinguishable on purpose so
	// existence never leaks across tenants.
	ErrApplicationNotFound = errors.New("application: not found")

	// ErrApplicationNameTaken is returned when the per-owner name
	// uniqueness constraint is violated.
	ErrApplicationNameTaken = errors.New("application: name already exists")

	// ErrEmptyUpdate is returned when an update carries no fields.
	ErrEmptyUpdate = errors.New("application: update requires at least one field")
)
