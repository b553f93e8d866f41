package ticketing

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateOpenTicket is returned when a user already has an open
	// ticket in the guild.
	ErrDuplicateOpenTicket = errors.New("user already has an open ticket")

	// ErrUnknownCategory is returned when a ticket is requested for a
	// category the guild does not have.
	ErrUnknownCategory = errors.New("unknown ticket category")
)

// PlatformError wraps a failed chat-platform call. It aborts the remaining
// steps of the operation that hit it; side effects already committed are not
// rolled back.
type PlatformError struct {
	// Op names the platform call that failed.
	Op string

	// Err is the underlying error.
	Err error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("discord %s: %v", e.Op, e.Err)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

func platformErr(op string, err error) *PlatformError {
	return &PlatformError{Op: op, Err: err}
}
