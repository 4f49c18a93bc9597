// Package session owns the browser lifecycle: engine, browser, context and
// page are opened in that order and torn down in reverse.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/gotrs-io/snipeit-e2e/internal/browser"
)

// ErrAlreadyOpen is returned by Open on a manager that holds a session.
var ErrAlreadyOpen = errors.New("session already open")

// ErrNotOpen is returned by operations that need an open session.
var ErrNotOpen = errors.New("session not open")

// Starter brings up the automation engine.
type Starter func() (browser.Engine, error)

// TeardownError records a failed teardown step.
type TeardownError struct {
	Step string
	Err  error
}

func (e *TeardownError) Error() string {
	return fmt.Sprintf("teardown %s: %v", e.Step, e.Err)
}

func (e *TeardownError) Unwrap() error { return e.Err }

// Options configures a Manager.
type Options struct {
	Launch  browser.LaunchOptions
	Context browser.ContextOptions
	// ScreenshotDir receives failure screenshots. Empty disables capture.
	ScreenshotDir string
	Logger        *zap.Logger
	Now           func() time.Time
}

// Manager holds one browser session.
type Manager struct {
	opts   Options
	logger *zap.Logger

	engine  browser.Engine
	browser browser.Browser
	context browser.Context
	page    browser.Page

	teardown error
}

// New returns a manager with no open session.
func New(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{opts: opts, logger: opts.Logger}
}

// Open starts the engine and creates browser, context and page in order.
// If any step fails, whatever was created is torn down before returning.
func (m *Manager) Open(start Starter) (browser.Page, error) {
	if m.engine != nil {
		return nil, ErrAlreadyOpen
	}

	engine, err := start()
	if err != nil {
		return nil, fmt.Errorf("start engine: %w", err)
	}
	m.engine = engine

	b, err := engine.Launch(m.opts.Launch)
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	m.browser = b

	if m.opts.Context.VideoDir != "" {
		if err := os.MkdirAll(m.opts.Context.VideoDir, 0o755); err != nil {
			m.Close()
			return nil, fmt.Errorf("create video directory: %w", err)
		}
	}
	c, err := b.NewContext(m.opts.Context)
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("create context: %w", err)
	}
	m.context = c

	p, err := c.NewPage()
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("create page: %w", err)
	}
	m.page = p

	m.logger.Info("browser session opened",
		zap.String("engine", m.opts.Launch.Engine),
		zap.Bool("headless", m.opts.Launch.Headless),
	)
	return p, nil
}

// Page returns the open page or nil.
func (m *Manager) Page() browser.Page { return m.page }

// Context returns the open browsing context or nil.
func (m *Manager) Context() browser.Context { return m.context }

// IsOpen reports whether a session is held.
func (m *Manager) IsOpen() bool { return m.engine != nil }

// Close tears down page, context, browser and engine. Every step is
// attempted; failures are logged and kept for TeardownErrors.
func (m *Manager) Close() {
	step := func(name string, fn func() error) {
		if err := fn(); err != nil {
			te := &TeardownError{Step: name, Err: err}
			m.logger.Warn("teardown step failed", zap.String("step", name), zap.Error(err))
			m.teardown = multierr.Append(m.teardown, te)
		}
	}

	if m.page != nil {
		step("page", m.page.Close)
	}
	if m.context != nil {
		step("context", m.context.Close)
	}
	if m.browser != nil {
		step("browser", m.browser.Close)
	}
	if m.engine != nil {
		step("engine", m.engine.Stop)
		m.logger.Info("browser session closed")
	}
	m.page, m.context, m.browser, m.engine = nil, nil, nil, nil
}

// TeardownErrors returns every teardown failure seen so far.
func (m *Manager) TeardownErrors() []error {
	return multierr.Errors(m.teardown)
}

// Reset clears cookies and web storage so the next scenario starts
// unauthenticated.
func (m *Manager) Reset() error {
	if m.context == nil || m.page == nil {
		return ErrNotOpen
	}
	return multierr.Combine(
		m.context.ClearCookies(),
		m.page.ClearStorage(),
	)
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ScreenshotPath returns the file a failure capture for name would use.
func (m *Manager) ScreenshotPath(name string) string {
	clean := unsafeName.ReplaceAllString(name, "-")
	file := fmt.Sprintf("screenshot-%s-%s.png", clean, m.opts.Now().Format("20060102-150405"))
	return filepath.Join(m.opts.ScreenshotDir, file)
}

// CaptureFailure saves a full-page screenshot for name and returns its path.
// Capture problems are logged and yield "".
func (m *Manager) CaptureFailure(name string) string {
	if m.opts.ScreenshotDir == "" {
		return ""
	}
	if m.page == nil {
		m.logger.Warn("no page to capture", zap.String("name", name))
		return ""
	}
	if err := os.MkdirAll(m.opts.ScreenshotDir, 0o755); err != nil {
		m.logger.Warn("could not create screenshot directory", zap.Error(err))
		return ""
	}
	path := m.ScreenshotPath(name)
	if err := m.page.Screenshot(path); err != nil {
		m.logger.Warn("could not capture screenshot", zap.String("name", name), zap.Error(err))
		return ""
	}
	m.logger.Info("screenshot saved", zap.String("path", path))
	return path
}
