// Package scenario models an ordered pipeline of UI workflows. Each scenario
// declares the state keys it requires and produces, so a run can be checked
// before it starts and fails fast when upstream state is missing.
package scenario

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Key names a value passed between scenarios, e.g. the created asset tag.
type Key string

// Isolation controls whether the session is reset before a scenario.
type Isolation int

const (
	// Shared scenarios continue in the session left by the previous one.
	Shared Isolation = iota
	// Isolated scenarios start with cookies and storage cleared.
	Isolated
)

func (i Isolation) String() string {
	if i == Isolated {
		return "isolated"
	}
	return "shared"
}

// Step is one action or assertion.
type Step struct {
	Name string
	Run  func(t *T)
}

// Scenario is one user workflow.
type Scenario struct {
	Name        string
	Description string
	Requires    []Key
	Produces    []Key
	Isolation   Isolation
	Steps       []Step
}

// State carries values between scenarios of one run.
type State struct {
	mu     sync.RWMutex
	values map[Key]any
}

// NewState returns an empty state.
func NewState() *State {
	return &State{values: map[Key]any{}}
}

func (s *State) Set(k Key, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[k] = v
}

func (s *State) Get(k Key) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[k]
	return v, ok
}

// Has reports whether k holds a non-empty value.
func (s *State) Has(k Key) bool {
	v, ok := s.Get(k)
	if !ok || v == nil {
		return false
	}
	if str, isStr := v.(string); isStr && str == "" {
		return false
	}
	return true
}

// String returns the value of k formatted as a string, or "".
func (s *State) String(k Key) string {
	v, ok := s.Get(k)
	if !ok || v == nil {
		return ""
	}
	if str, isStr := v.(string); isStr {
		return str
	}
	return fmt.Sprint(v)
}

// Keys returns the keys currently set, sorted.
func (s *State) Keys() []Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]Key, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Value returns k as a V.
func Value[V any](s *State, k Key) (V, bool) {
	var zero V
	v, ok := s.Get(k)
	if !ok {
		return zero, false
	}
	typed, ok := v.(V)
	return typed, ok
}

// ErrInvalidPlan wraps every static pipeline problem.
var ErrInvalidPlan = errors.New("invalid scenario plan")

// Plan checks the pipeline statically: names are unique and non-empty,
// every scenario has steps, and every required key is produced by an
// earlier scenario.
func Plan(scenarios []Scenario) error {
	var errs []error
	seen := map[string]bool{}
	produced := map[Key]string{}

	for i, s := range scenarios {
		switch {
		case s.Name == "":
			errs = append(errs, fmt.Errorf("scenario #%d has no name", i+1))
		case seen[s.Name]:
			errs = append(errs, fmt.Errorf("duplicate scenario %q", s.Name))
		}
		seen[s.Name] = true

		if len(s.Steps) == 0 {
			errs = append(errs, fmt.Errorf("scenario %q has no steps", s.Name))
		}
		for _, k := range s.Requires {
			if _, ok := produced[k]; !ok {
				errs = append(errs, fmt.Errorf("scenario %q requires %q, which no earlier scenario produces", s.Name, k))
			}
		}
		for _, k := range s.Produces {
			produced[k] = s.Name
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPlan, errors.Join(errs...))
	}
	return nil
}

// Subset returns the named scenarios plus every earlier scenario they
// transitively depend on, in pipeline order. An empty names list selects
// everything.
func Subset(all []Scenario, names []string) ([]Scenario, error) {
	if len(names) == 0 {
		return all, nil
	}
	index := map[string]int{}
	for i, s := range all {
		index[s.Name] = i
	}

	keep := make([]bool, len(all))
	need := map[Key]bool{}
	for _, n := range names {
		i, ok := index[n]
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q", n)
		}
		keep[i] = true
	}

	// Walk backwards so producers are found after their consumers.
	for i := len(all) - 1; i >= 0; i-- {
		s := all[i]
		if !keep[i] {
			for _, k := range s.Produces {
				if need[k] {
					keep[i] = true
					break
				}
			}
		}
		if keep[i] {
			for _, k := range s.Produces {
				delete(need, k)
			}
			for _, k := range s.Requires {
				need[k] = true
			}
		}
	}

	var out []Scenario
	for i, s := range all {
		if keep[i] {
			out = append(out, s)
		}
	}
	return out, nil
}
