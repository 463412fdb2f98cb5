package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// FailureKind is the closed set of ways a provider call can fail.
type FailureKind string

const (
	FailTimeout       FailureKind = "timeout"
	FailRateLimited   FailureKind = "rate_limited"
	FailUnreachable   FailureKind = "unreachable"
	FailMalformed     FailureKind = "malformed_response"
	FailUnknownSymbol FailureKind = "unknown_symbol"
)

type Error struct {
	Kind    FailureKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("adapter %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("adapter %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func NewError(kind FailureKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Classify maps an arbitrary error from the transport layer onto the closed
// taxonomy. Anything unrecognized counts as unreachable: from the caller's
// perspective the provider did not answer.
func Classify(err error, message string) *Error {
	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(FailTimeout, message, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewError(FailTimeout, message, err)
	}

	return NewError(FailUnreachable, message, err)
}
