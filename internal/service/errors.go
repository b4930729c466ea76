package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches every StoryNotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrExternalService is returned when a model or vector backend call fails.
	ErrExternalService = errors.New("external service error")
)

// ValidationError reports a rejected request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

// StoryNotFoundError is returned when no story matches a requested id.
type StoryNotFoundError struct {
	ID string
}

func (e *StoryNotFoundError) Error() string {
	return fmt.Sprintf("story %q not found", e.ID)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *StoryNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// backendError marks err as a failure of an external backend during op.
func backendError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrExternalService, err)
}
