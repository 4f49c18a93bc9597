package pages

import (
	"go.uber.org/zap"

	"github.com/gotrs-io/snipeit-e2e/internal/locator"
)

// ActionState is the lifecycle of a single page object action.
//
//	Idle -> Probing -> Found -> Acting -> Succeeded | ActionFailed
//	Probing -> NotFound
type ActionState int

const (
	Idle ActionState = iota
	Probing
	Found
	Acting
	Succeeded
	ActionFailed
	NotFound
)

func (s ActionState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Probing:
		return "probing"
	case Found:
		return "found"
	case Acting:
		return "acting"
	case Succeeded:
		return "succeeded"
	case ActionFailed:
		return "failed"
	case NotFound:
		return "not-found"
	}
	return "unknown"
}

// Terminal reports whether no further transition follows s.
func (s ActionState) Terminal() bool {
	return s == Succeeded || s == ActionFailed || s == NotFound
}

// Tracer observes action state transitions.
type Tracer interface {
	Transition(action string, name locator.Name, from, to ActionState)
}

// TracerFunc adapts a function to Tracer.
type TracerFunc func(action string, name locator.Name, from, to ActionState)

func (f TracerFunc) Transition(action string, name locator.Name, from, to ActionState) {
	f(action, name, from, to)
}

type tracked struct {
	action string
	name   locator.Name
	state  ActionState
	tracer Tracer
	logger *zap.Logger
}

func (t *tracked) to(next ActionState) {
	if t.tracer != nil {
		t.tracer.Transition(t.action, t.name, t.state, next)
	}
	t.logger.Debug("action",
		zap.String("action", t.action),
		zap.String("element", string(t.name)),
		zap.Stringer("from", t.state),
		zap.Stringer("to", next),
	)
	t.state = next
}
