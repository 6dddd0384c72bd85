package arena

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the stable machine-readable category attached to every
// rejection.
type Kind string

const (
	// KindValidation covers malformed wagers, moves, strategies and
	// hash/salt shapes. No state change happened.
	KindValidation Kind = "validation"

	// KindConflict covers wrong phase/status, deadline violations,
	// duplicate commits/reveals and non-participants. Retries are safe.
	KindConflict Kind = "conflict"

	// KindIntegrity marks a reveal whose hash does not match the stored
	// commitment. This is a protocol violation, never a silent fallback.
	KindIntegrity Kind = "integrity"

	// KindInsufficientFunds marks an escrow rejected before any
	// mutation.
	KindInsufficientFunds Kind = "insufficient_funds"

	KindInternal Kind = "internal"
)

// Error carries the kind plus a human-readable reason. Every engine
// operation is all-or-nothing, so any Error implies no partial state.
type Error struct {
	Kind   Kind   `json:"kind"`
	Reason string `json:"reason"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		Reason: fmt.Sprintf(format, args...),
	}
}

// HTTPStatus maps a kind to the response status used by every handler.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindIntegrity:
		return http.StatusUnprocessableEntity
	case KindInsufficientFunds:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// AsError unwraps err into an *Error if one is in the chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}

	return nil, false
}
