// Package locator maps semantic element names to a primary and an optional
// fallback selector and resolves them against a page.
package locator

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/gotrs-io/snipeit-e2e/internal/browser"
)

// ErrUnknownName is returned when a name has no registry entry. It always
// indicates a programming error in a page object.
var ErrUnknownName = errors.New("unknown element name")

// Name identifies an element by what it is, e.g. "login.username".
type Name string

// Entry is the selector pair for one element.
type Entry struct {
	Primary  string
	Fallback string
}

// Selectors returns the non-empty selectors in probe order.
func (e Entry) Selectors() []string {
	out := []string{e.Primary}
	if e.Fallback != "" && e.Fallback != e.Primary {
		out = append(out, e.Fallback)
	}
	return out
}

// Registry maps element names to selector pairs.
type Registry map[Name]Entry

// Merge returns a copy of r with the entries of other layered on top.
func (r Registry) Merge(other Registry) Registry {
	out := make(Registry, len(r)+len(other))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Names returns the registered names in sorted order.
func (r Registry) Names() []Name {
	names := make([]Name, 0, len(r))
	for k := range r {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Validate reports entries without a primary selector.
func (r Registry) Validate() error {
	var errs []error
	for _, name := range r.Names() {
		if r[name].Primary == "" {
			errs = append(errs, fmt.Errorf("%s: primary selector is empty", name))
		}
	}
	return errors.Join(errs...)
}

// Resolver resolves names against a page, probing each selector for at most
// the probe timeout.
type Resolver struct {
	registry Registry
	probe    time.Duration
}

// NewResolver binds a registry to a probe timeout.
func NewResolver(registry Registry, probe time.Duration) *Resolver {
	return &Resolver{registry: registry, probe: probe}
}

// Entry returns the registered selector pair for name.
func (r *Resolver) Entry(name Name) (Entry, error) {
	e, ok := r.registry[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownName, name)
	}
	return e, nil
}

// Resolve returns the first selector of name that is attached to the page
// within the probe timeout. It probes at most twice.
func (r *Resolver) Resolve(page browser.Page, name Name) (browser.Locator, error) {
	e, err := r.Entry(name)
	if err != nil {
		return nil, err
	}
	selectors := e.Selectors()
	for _, sel := range selectors {
		loc := page.Locator(sel)
		if err := loc.First().WaitFor(browser.StateAttached, r.probe); err == nil {
			return loc, nil
		}
	}
	return nil, &browser.ElementNotFoundError{Name: string(name), Selectors: selectors}
}

// Select returns the first selector of name that currently matches anything,
// without waiting. When nothing matches it returns the primary selector,
// which yields an empty result.
func (r *Resolver) Select(page browser.Page, name Name) (browser.Locator, error) {
	e, err := r.Entry(name)
	if err != nil {
		return nil, err
	}
	for _, sel := range e.Selectors() {
		loc := page.Locator(sel)
		if n, err := loc.Count(); err == nil && n > 0 {
			return loc, nil
		}
	}
	return page.Locator(e.Primary), nil
}

// Probe is the per-selector probe timeout.
func (r *Resolver) Probe() time.Duration { return r.probe }
