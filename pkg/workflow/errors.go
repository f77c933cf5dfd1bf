package workflow

import (
	"errors"
	"net/http"
)

// Domain error kinds returned by the workflow core. Handlers map these to
// HTTP status codes with StatusCode; everything else is a 500.
var (
	// ErrValidation covers malformed or missing input (empty report ID,
	// unknown action verb, free-text status outside the closed set).
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized means no authenticated principal.
	ErrUnauthorized = errors.New("unauthenticated")

	// ErrForbidden means the principal's stored role does not match the
	// role required for the requested action.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidStatus means a status string outside the closed set.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrOutOfSequence means the transition is not permitted from the
	// current state (approving out of turn, skipping a review stage).
	ErrOutOfSequence = errors.New("transition out of sequence")

	// ErrChainHalted means the approval chain was terminated by a
	// rejection and accepts no further actions.
	ErrChainHalted = errors.New("approval chain halted by rejection")

	// ErrConflict means a concurrent modification was detected by the
	// compare-and-set guard on the status column.
	ErrConflict = errors.New("conflicting concurrent transition")

	// ErrPersistence wraps storage failures.
	ErrPersistence = errors.New("persistence failure")
)

// StatusCode maps a domain error to its HTTP status code.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrOutOfSequence), errors.Is(err, ErrChainHalted), errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
