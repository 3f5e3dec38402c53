package auth

import "errors"

var (
	// ErrEmailAlreadyInUse is returned when registration hits the email
	// uniqueness constraint.
	ErrEmailAlreadyInUse = errors.New("auth: email already in use")

	// ErrInvalidCredentials is returned for unknown email, wrong password,
	// or both. The cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrNotLoggedIn is returned when a session is missing, expired, or
	// deleted.
	ErrNotLoggedIn = errors.New("auth: not logged in")
)
