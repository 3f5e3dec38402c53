package permission

import "errors"

var (
	// ErrPermissionNotFound covers a wrong id, a different scope, or a
	// soft-deleted row. The cases are indistinguishable on purpose so
	// existence never leaks across tenants.
	ErrPermissionNotFound = errors.New("permission: not found")

	// ErrPermissionNameTaken is returned when the per-scope name
	// uniqueness constraint is violated.
	ErrPermissionNameTaken = errors.New("permission: name already exists")

	// ErrEmptyUpdate is returned when an update carries no fields.
	ErrEmptyUpdate = errors.New("permission: update requires at least one field")
)
