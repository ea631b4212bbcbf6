package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Permission errors
	ErrCodeNotHost = "not_host"

	// Resource errors
	ErrCodeGameNotFound = "game_not_found"
	ErrCodeConflict     = "conflict"

	// Game flow errors
	ErrCodeGameNotStarted = "game_not_started"
	ErrCodeGameCompleted  = "game_completed"
	ErrCodeCreateFailed   = "game_creation_failed"
	ErrCodeGuessFailed    = "guess_failed"

	// Server errors
	ErrCodeInternalError = "internal_error"
)
