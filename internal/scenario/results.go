package scenario

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is the verdict of a step or scenario.
type Outcome string

const (
	Passed  Outcome = "passed"
	Failed  Outcome = "failed"
	Skipped Outcome = "skipped"
)

// StepResult is the verdict of one step.
type StepResult struct {
	Name     string        `yaml:"name"`
	Outcome  Outcome       `yaml:"outcome"`
	Duration time.Duration `yaml:"duration"`
	Err      error         `yaml:"-"`
}

// Result is the verdict of one scenario, with its failure diagnostics.
type Result struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Outcome     Outcome       `yaml:"outcome"`
	Started     time.Time     `yaml:"started"`
	Duration    time.Duration `yaml:"duration"`
	Steps       []StepResult  `yaml:"steps,omitempty"`
	Err         error         `yaml:"-"`
	// URL is the page URL when the scenario failed.
	URL string `yaml:"url,omitempty"`
	// Screenshot is the failure capture, if one was written.
	Screenshot string `yaml:"screenshot,omitempty"`
}

// Message returns the failure or skip reason, or "".
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// FailedStep returns the name of the first failed step, or "".
func (r Result) FailedStep() string {
	for _, s := range r.Steps {
		if s.Outcome == Failed {
			return s.Name
		}
	}
	return ""
}

// Results is the outcome of one run.
type Results struct {
	RunID     uuid.UUID `yaml:"run_id"`
	Started   time.Time `yaml:"started"`
	Finished  time.Time `yaml:"finished"`
	Scenarios []Result  `yaml:"scenarios"`
}

// Duration is the wall time of the run.
func (r *Results) Duration() time.Duration { return r.Finished.Sub(r.Started) }

// Count returns how many scenarios ended with outcome.
func (r *Results) Count(outcome Outcome) int {
	n := 0
	for _, s := range r.Scenarios {
		if s.Outcome == outcome {
			n++
		}
	}
	return n
}

// OK reports whether no scenario failed.
func (r *Results) OK() bool { return r.Count(Failed) == 0 }

// Lookup returns the result for a scenario by name.
func (r *Results) Lookup(name string) (Result, bool) {
	for _, s := range r.Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return Result{}, false
}
