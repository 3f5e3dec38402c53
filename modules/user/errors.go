package user

import "errors"

var (
	// ErrUserNotFound covers a wrong id, a different scope, or a
	// soft-deleted row. The cases are indistinguishable on purpose so
	// existence never leaks across tenants.
	ErrUserNotFound = errors.New("user: not found")

	// ErrEmptyUpdate is returned when an update carries no fields.
	ErrEmptyUpdate = errors.New("user: update requires at least one field")

	// ErrRoleAlreadyAssigned is returned when any pair of an assignment
	// batch already exists. The batch is atomic, nothing is inserted.
	ErrRoleAlreadyAssigned = errors.New("user: role already assigned")

	// ErrRoleNotFound means the assignment (or the role itself) does not
	// exist in the user's scope.
	ErrRoleNotFound = errors.New("user: role not found")
)
