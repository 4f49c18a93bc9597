// Package wait provides the poll-until-true primitive used by page objects
// and scenarios to wait for a rendered state.
package wait

import (
	"context"
	"fmt"
	"time"
)

// DefaultInterval is used when a caller passes a non-positive interval.
const DefaultInterval = 250 * time.Millisecond

// Condition reports whether the awaited state has been reached. A non-nil
// error stops polling immediately.
type Condition func(ctx context.Context) (bool, error)

// TimeoutError is returned when a condition never held within the deadline.
type TimeoutError struct {
	Description string
	Timeout     time.Duration
	Attempts    int
	// Last is the last error observed from a probe, if any.
	Last error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("timed out after %s waiting for %s (%d attempts)", e.Timeout, e.Description, e.Attempts)
	if e.Last != nil {
		msg += ": " + e.Last.Error()
	}
	return msg
}

func (e *TimeoutError) Unwrap() error { return e.Last }

// Until evaluates cond every interval until it returns true, returns an
// error, the timeout elapses or ctx is cancelled. The condition is always
// evaluated at least once.
func Until(ctx context.Context, description string, timeout, interval time.Duration, cond Condition) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	deadline := time.Now().Add(timeout)
	attempts := 0

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		attempts++
		ok, err := cond(ctx)
		if err != nil {
			return fmt.Errorf("waiting for %s: %w", description, err)
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return &TimeoutError{Description: description, Timeout: timeout, Attempts: attempts}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s: %w", description, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Probe is a condition that tolerates transient errors: any error counts as
// "not yet" and is kept as the last observed failure.
func Probe(ctx context.Context, description string, timeout, interval time.Duration, probe func(ctx context.Context) (bool, error)) error {
	var last error
	err := Until(ctx, description, timeout, interval, func(ctx context.Context) (bool, error) {
		ok, err := probe(ctx)
		if err != nil {
			last = err
			return false, nil
		}
		return ok, nil
	})
	if te, ok := err.(*TimeoutError); ok {
		te.Last = last
	}
	return err
}
