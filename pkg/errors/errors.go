package errors

import (
	"errors"
	"fmt"
)

// Common error types
var (
	// ErrInvalidConfig indicates that environment-sourced settings are missing or invalid
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnknownBackend indicates that no collection backend exists for a name
	ErrUnknownBackend = errors.New("unknown store backend")

	// ErrInvalidDocument indicates that a document does not satisfy its schema
	ErrInvalidDocument = errors.New("invalid document")

	// ErrDatabaseOperation indicates a database operation failure
	ErrDatabaseOperation = errors.New("database operation failed")
)

// StoreError represents a collection backend failure with the operation that produced it
type StoreError struct {
	Backend string // Backend where the error occurred
	Op      string // Operation that failed
	Err     error  // Underlying error
}

// Error implements the error interface
func (e *StoreError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Backend, e.Op, e.Err)
}

// Unwrap allows errors.Is and errors.As to work
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is reports every StoreError as a database operation failure
func (e *StoreError) Is(target error) bool {
	return target == ErrDatabaseOperation
}

// NewStoreError creates a new StoreError, or returns nil for a nil error
func NewStoreError(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{
		Backend: backend,
		Op:      op,
		Err:     err,
	}
}

// IsStoreFailure checks if an error came from a collection backend
func IsStoreFailure(err error) bool {
	return errors.Is(err, ErrDatabaseOperation)
}

// IsInvalidConfig checks if an error is a configuration error
func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
