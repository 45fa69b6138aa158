package lifecycle

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the request id does not exist.
	ErrNotFound = errors.New("request not found")

	// ErrConflict means the stored state no longer matches the precondition
	// the caller read, e.g. another farmer accepted first. The caller may
	// re-fetch and retry; the engine never retries on its own.
	ErrConflict = errors.New("request is no longer available")
)

// ValidationError is caller-fixable bad input: a missing field or an action
// that is meaningless for the request's current status.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// DenialReason is the machine-checkable code carried by an authorization
// denial.
type DenialReason string

const (
	DenyNotAuthenticated DenialReason = "not_authenticated"
	DenyWrongRole        DenialReason = "wrong_role"
	DenyNotOwner         DenialReason = "not_owner"
	DenyNotAssigned      DenialReason = "not_assigned"
)

// Denial is a structured authorization failure. It is returned as a value,
// never thrown and caught for control flow, and surfaced verbatim to the
// caller.
type Denial struct {
	Reason DenialReason
	Msg    string
}

func (d *Denial) Error() string {
	return d.Msg
}

func deny(reason DenialReason, format string, args ...any) *Denial {
	return &Denial{Reason: reason, Msg: fmt.Sprintf(format, args...)}
}
