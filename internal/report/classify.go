package report

import (
	"errors"

	"github.com/gotrs-io/snipeit-e2e/internal/browser"
	"github.com/gotrs-io/snipeit-e2e/internal/scenario"
	"github.com/gotrs-io/snipeit-e2e/internal/wait"
)

// failureType names the error class of a failure for reports.
func failureType(err error) string {
	var timeout *wait.TimeoutError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, browser.ErrElementNotFound):
		return "ElementNotFound"
	case errors.Is(err, browser.ErrElementNotInteractable):
		return "ElementNotInteractable"
	case errors.Is(err, browser.ErrNavigationTimeout):
		return "NavigationTimeout"
	case errors.Is(err, scenario.ErrPrecondition):
		return "PreconditionFailed"
	case errors.Is(err, scenario.ErrAssertion):
		return "AssertionFailed"
	case errors.As(err, &timeout):
		return "WaitTimeout"
	}
	return "Error"
}
