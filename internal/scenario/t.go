package scenario

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gotrs-io/snipeit-e2e/internal/browser"
)

// failNow unwinds a step after FailNow.
type failNow struct{}

// T is handed to every step. It satisfies testify's TestingT, so steps
// assert with require and assert.
type T struct {
	ctx      context.Context
	scenario string
	step     string
	page     browser.Page
	state    *State
	logger   *zap.Logger

	failed   bool
	messages []string
	cause    error
	// causeAt is how many messages were recorded before the cause.
	causeAt int
}

func newT(ctx context.Context, scenario string, page browser.Page, state *State, logger *zap.Logger) *T {
	return &T{ctx: ctx, scenario: scenario, page: page, state: state, logger: logger}
}

func (t *T) Context() context.Context { return t.ctx }

func (t *T) Page() browser.Page { return t.page }

func (t *T) State() *State { return t.state }

func (t *T) Logger() *zap.Logger { return t.logger }

// Name returns "scenario/step".
func (t *T) Name() string { return t.scenario + "/" + t.step }

// Errorf records a failure and lets the step continue.
func (t *T) Errorf(format string, args ...any) {
	t.failed = true
	t.messages = append(t.messages, strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// FailNow stops the current step.
func (t *T) FailNow() {
	t.failed = true
	panic(failNow{})
}

func (t *T) Fatalf(format string, args ...any) {
	t.Errorf(format, args...)
	t.FailNow()
}

func (t *T) Helper() {}

func (t *T) Logf(format string, args ...any) {
	t.logger.Info(fmt.Sprintf(format, args...), zap.String("step", t.Name()))
}

func (t *T) Failed() bool { return t.failed }

// Must stops the step when err is non-nil and keeps err as the failure
// cause, so driver errors reach the result with their type intact.
func (t *T) Must(err error) {
	if err == nil {
		return
	}
	if t.cause == nil {
		t.cause, t.causeAt = err, len(t.messages)
	}
	t.Fatalf("%v", err)
}

// run executes one step, converting FailNow and panics into an error.
func (t *T) run(step Step) (err error) {
	t.step = step.Name
	t.failed, t.messages, t.cause, t.causeAt = false, nil, nil, 0

	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(failNow); !ok {
				err = fmt.Errorf("%s / %s: panic: %v", t.scenario, step.Name, r)
				return
			}
		}
		if err == nil && t.failed {
			err = t.failure()
		}
	}()

	step.Run(t)
	return nil
}

// failure builds the step error. A cause from Must keeps its type, joined
// with any assertion failures recorded before it.
func (t *T) failure() error {
	if t.cause != nil {
		if t.causeAt == 0 {
			return fmt.Errorf("%s / %s: %w", t.scenario, t.step, t.cause)
		}
		earlier := &AssertionError{Scenario: t.scenario, Step: t.step, Messages: t.messages[:t.causeAt]}
		return fmt.Errorf("%s / %s: %w", t.scenario, t.step, errors.Join(t.cause, earlier))
	}
	return &AssertionError{Scenario: t.scenario, Step: t.step, Messages: t.messages}
}
