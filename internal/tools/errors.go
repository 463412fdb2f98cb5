package tools

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateTool reports a startup-time registration conflict. It is fatal
// at startup, never a runtime condition.
var ErrDuplicateTool = errors.New("tool already registered")

// ErrUnknownTool reports a call against a name the registry does not hold.
var ErrUnknownTool = errors.New("unknown tool")

// ValidationError collects every constraint an argument set violates, so a
// caller can fix all of them in one round trip.
type ValidationError struct {
	Tool       string
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, strings.Join(e.Violations, "; "))
}
