package adapter

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type timeoutNetError struct{}

func (timeoutNetError) Error() string   { return "i/o timeout" }
func (timeoutNetError) Timeout() bool   { return true }
func (timeoutNetError) Temporary() bool { return true }

func TestClassifyPassesThroughAdapterErrors(t *testing.T) {
	orig := NewError(FailRateLimited, "429", nil)

	got := Classify(orig, "ignored")
	if got != orig {
		t.Error("expected existing adapter error to pass through unchanged")
	}

	wrapped := fmt.Errorf("call failed: %w", orig)
	got = Classify(wrapped, "ignored")
	if got.Kind != FailRateLimited {
		t.Errorf("expected wrapped adapter error kind preserved, got %s", got.Kind)
	}
}

func TestClassifyDeadline(t *testing.T) {
	got := Classify(context.DeadlineExceeded, "request timed out")
	if got.Kind != FailTimeout {
		t.Errorf("expected timeout, got %s", got.Kind)
	}
}

func TestClassifyNetTimeout(t *testing.T) {
	got := Classify(timeoutNetError{}, "dial")
	if got.Kind != FailTimeout {
		t.Errorf("expected timeout for net.Error timeout, got %s", got.Kind)
	}
}

func TestClassifyDefaultsToUnreachable(t *testing.T) {
	got := Classify(errors.New("connection refused"), "dial")
	if got.Kind != FailUnreachable {
		t.Errorf("expected unreachable, got %s", got.Kind)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewError(FailMalformed, "bad json", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
}
