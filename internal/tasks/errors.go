package tasks

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no active or completed task has the ID
	ErrNotFound = errors.New("task not found")
	// ErrTaskCompleted is returned when a completed task would be mutated
	ErrTaskCompleted = errors.New("task is already completed")
	// ErrValidation wraps input validation failures
	ErrValidation = errors.New("validation failed")
)

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
