package directory

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrAlreadyExists indicates a create targeted a path that is already occupied.
	ErrAlreadyExists = errors.New("document already exists")
)

// ConflictError reports which path made a CreateAll batch fail.
// It unwraps to ErrAlreadyExists.
type ConflictError struct {
	Path Path
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("document already exists: %s", e.Path)
}

func (e *ConflictError) Unwrap() error { return ErrAlreadyExists }
