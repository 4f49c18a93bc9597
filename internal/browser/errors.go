package browser

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrElementNotFound        = errors.New("element not found")
	ErrElementNotInteractable = errors.New("element not interactable")
	ErrNavigationTimeout      = errors.New("navigation timeout")
	// ErrTimeout is returned by drivers when an operation exceeds its deadline.
	ErrTimeout = errors.New("timeout")
)

// ElementNotFoundError reports that neither selector of a semantic element
// matched within the probe timeout.
type ElementNotFoundError struct {
	Name      string
	Selectors []string
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element %q not found (tried %s)", e.Name, strings.Join(e.Selectors, ", "))
}

func (e *ElementNotFoundError) Is(target error) bool { return target == ErrElementNotFound }

// ElementNotInteractableError reports that an element was present but never
// became visible and enabled.
type ElementNotInteractableError struct {
	Name     string
	Selector string
	Action   string
	Err      error
}

func (e *ElementNotInteractableError) Error() string {
	msg := fmt.Sprintf("element %q (%s) not interactable for %s", e.Name, e.Selector, e.Action)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ElementNotInteractableError) Is(target error) bool {
	return target == ErrElementNotInteractable
}

func (e *ElementNotInteractableError) Unwrap() error { return e.Err }

// NavigationTimeoutError reports that a page did not load, or its defining
// element did not appear, within the timeout.
type NavigationTimeoutError struct {
	URL     string
	Timeout time.Duration
	Err     error
}

func (e *NavigationTimeoutError) Error() string {
	msg := fmt.Sprintf("navigation to %s did not complete within %s", e.URL, e.Timeout)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NavigationTimeoutError) Is(target error) bool { return target == ErrNavigationTimeout }

func (e *NavigationTimeoutError) Unwrap() error { return e.Err }
