package service

import (
	"errors"
	"fmt"
)

var (
	// Reorder failure modes. ErrInvalidReference and ErrDuplicateReference
	// are detected before any write; ErrPartialReorder means the client's
	// view of the scope is stale and a refresh is needed.
	ErrInvalidReference   = errors.New("reorder references an id outside the scope")
	ErrDuplicateReference = errors.New("reorder contains duplicate ids")
	ErrPartialReorder     = errors.New("reorder must list every item currently in scope")
	ErrReorderTooLarge    = errors.New("too many items to reorder")

	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError is a recoverable input error tied to a single field. The
// caller fixes the input and retries; it is never retried automatically.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
