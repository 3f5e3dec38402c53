package role

import "errors"

var (
	// ErrRoleNotFound covers a wrong id, a different scope, or a
	// soft-deleted row. The cases are indistinguishable on purpose so
	// existence never leaks across tenants.
	ErrRoleNotFound = errors.New("role: not found")

	// ErrRoleNameTaken is returned when the per-scope name uniqueness
	// constraint is violated.
	ErrRoleNameTaken = errors.New("role: name already exists")

	// ErrEmptyUpdate is returned when an update carries no fields.
	ErrEmptyUpdate = errors.New("role: update requires at least one field")

	// ErrPermissionAlreadyGranted is returned when any pair of a grant
	// batch already exists. The batch is atomic, nothing is inserted.
	ErrPermissionAlreadyGranted = errors.New("role: permission already granted")

	// ErrPermissionNotFound means the grant (or the permission itself)
	// does not exist in the role's scope.
	ErrPermissionNotFound = errors.New("role: permission not found")
)
