// Package browser defines the driver-neutral automation contract the page
// objects are written against. The playwright implementation lives in the
// pw subpackage; htmlfake provides an in-process driver for tests.
package browser

import (
	"time"
)

// WaitState is the element state awaited by Locator.WaitFor.
type WaitState string

const (
	StateAttached WaitState = "attached"
	StateDetached WaitState = "detached"
	StateVisible  WaitState = "visible"
	StateHidden   WaitState = "hidden"
)

// LaunchOptions configures a browser launch.
type LaunchOptions struct {
	Engine   string
	Headless bool
	SlowMo   time.Duration
}

// ContextOptions configures an isolated browsing context.
type ContextOptions struct {
	ViewportWidth  int
	ViewportHeight int
	// VideoDir enables video recording when non-empty.
	VideoDir string
	// LogRequests emits every outgoing request at debug level.
	LogRequests bool
	// DefaultTimeout bounds driver calls made without an explicit timeout.
	// Zero keeps the engine's own default.
	DefaultTimeout time.Duration
	// NavigationTimeout bounds page loads made without an explicit timeout.
	NavigationTimeout time.Duration
}

// Engine is the automation engine process.
type Engine interface {
	Launch(opts LaunchOptions) (Browser, error)
	Stop() error
}

// Browser is a launched browser instance.
type Browser interface {
	NewContext(opts ContextOptions) (Context, error)
	IsConnected() bool
	Close() error
}

// Context is an isolated browsing context (cookie jar and storage).
type Context interface {
	NewPage() (Page, error)
	ClearCookies() error
	Close() error
}

// Page is a single tab.
type Page interface {
	Goto(url string, timeout time.Duration) error
	URL() string
	Title() (string, error)
	Locator(selector string) Locator
	Press(key string) error
	WaitForURL(match func(url string) bool, timeout time.Duration) error
	Screenshot(path string) error
	Content() (string, error)
	ClearStorage() error
	Close() error
}

// Locator is a lazy element query. Nothing is resolved until an action or
// probe is performed, so a Locator never goes stale.
type Locator interface {
	Selector() string
	First() Locator
	Nth(i int) Locator
	Locator(selector string) Locator
	// FilterText narrows the match to elements whose text contains s.
	FilterText(s string) Locator

	Count() (int, error)
	WaitFor(state WaitState, timeout time.Duration) error

	Click(timeout time.Duration, force bool) error
	Fill(value string, timeout time.Duration) error
	Clear(timeout time.Duration) error
	Press(key string, timeout time.Duration) error
	// SelectOption selects an option of a native select by its visible label.
	SelectOption(label string, timeout time.Duration) error

	TextContent() (string, error)
	InnerText() (string, error)
	InputValue() (string, error)
	Attribute(name string) (string, bool, error)
	IsVisible() (bool, error)
	IsEnabled() (bool, error)
	AllInnerTexts() ([]string, error)
}
