package game

import "errors"

// ErrNotFound indicates no session exists under the requested code.
var ErrNotFound = errors.New("session not found")

// ErrVersionConflict indicates a concurrent writer updated the session
// between this request's read and write.
var ErrVersionConflict = errors.New("session version conflict")

// ValidationError rejects malformed input or a transition the current state
// does not allow.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PermissionError rejects a host-only mutation attempted without the host
// identity.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	return e.Message
}

func validationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func permissionError(message string) error {
	return &PermissionError{Message: message}
}
