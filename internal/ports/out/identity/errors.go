package identity

import "errors"

var (
	// ErrNotFound indicates no account matches the lookup.
	ErrNotFound = errors.New("account not found")

	// ErrUIDExists indicates an account already uses the requested uid.
	ErrUIDExists = errors.New("account uid already exists")

	// ErrEmailExists indicates an account already uses the requested email.
	ErrEmailExists = errors.New("account email already exists")

	// ErrPhoneExists indicates an account already uses the requested phone number.
	ErrPhoneExists = errors.New("account phone number already exists")
)
