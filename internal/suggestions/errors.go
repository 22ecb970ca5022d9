package suggestions

import "errors"

var (
	// ErrInvalidInput indicates a missing or malformed request field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrGenerationFailed indicates the model call failed for a reason other
	// than rate limiting.
	ErrGenerationFailed = errors.New("failed to generate suggestions")
	// ErrNotFound indicates the suggestion does not exist or is not visible
	// to the caller.
	ErrNotFound = errors.New("suggestion not found")
)
