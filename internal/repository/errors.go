// Package repository defines the data access layer and the error types
// shared by every repository. Handlers distinguish failures with errors.Is
// and errors.As: a *NotFoundError means a referenced row does not exist, a
// *ConflictError means a business key is already taken.
package repository

import (
	"errors"
	"fmt"

	"github.com/iliyamo/musicuration-desk/internal/database"
)

// ErrNotFound matches every *NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// ErrConflict matches every *ConflictError via errors.Is. Handlers
// translate it into an HTTP 400 response carrying the conflict message.
var ErrConflict = errors.New("conflict")

// NotFoundError names the missing entity and the id that was looked up.
type NotFoundError struct {
	Entity string
	ID     uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError carries a human readable message naming the business key.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

func notFound(entity string, id uint64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func conflict(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// mapConstraint translates a write error into a ConflictError when it is a
// unique violation. messages maps constraint names to the conflict text;
// unique violations of unlisted constraints get fallback. Other errors are
// returned unchanged.
func mapConstraint(err error, messages map[string]string, fallback string) error {
	var cv *database.ConstraintViolation
	if !errors.As(database.Classify(err), &cv) {
		return err
	}
	switch cv.Kind {
	case database.UniqueViolation:
		if msg, ok := messages[cv.Constraint]; ok {
			return &ConflictError{Message: msg}
		}
		return &ConflictError{Message: fallback}
	default:
		return cv
	}
}
