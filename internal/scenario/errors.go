package scenario

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAssertion    = errors.New("assertion failed")
	ErrPrecondition = errors.New("precondition not met")
	ErrSkipped      = errors.New("skipped")
)

// AssertionError carries the messages recorded by a failed step.
type AssertionError struct {
	Scenario string
	Step     string
	Messages []string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s / %s: %s", e.Scenario, e.Step, strings.Join(e.Messages, "; "))
}

func (e *AssertionError) Is(target error) bool { return target == ErrAssertion }

// PreconditionError reports state a scenario requires that no upstream
// scenario produced.
type PreconditionError struct {
	Scenario string
	Missing  []Key
}

func (e *PreconditionError) Error() string {
	keys := make([]string, len(e.Missing))
	for i, k := range e.Missing {
		keys[i] = string(k)
	}
	return fmt.Sprintf("scenario %q cannot run: missing %s", e.Scenario, strings.Join(keys, ", "))
}

func (e *PreconditionError) Is(target error) bool { return target == ErrPrecondition }

// SkipError explains why a scenario did not run.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string { return e.Reason }

func (e *SkipError) Is(target error) bool { return target == ErrSkipped }
