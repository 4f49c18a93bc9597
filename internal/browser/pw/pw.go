// Package pw implements the browser contract on top of playwright-go.
package pw

import (
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/gotrs-io/snipeit-e2e/internal/browser"
)

// StartOptions controls how the playwright driver is brought up.
type StartOptions struct {
	// Install downloads the driver and the named engine before starting.
	Install bool
	Engine  string
	Logger  *zap.Logger
}

// Install downloads the playwright driver and the given browser engines.
func Install(engines ...string) error {
	if err := playwright.Install(&playwright.RunOptions{Browsers: engines}); err != nil {
		return fmt.Errorf("could not install playwright browsers: %w", err)
	}
	return nil
}

// Start launches the playwright driver process.
func Start(opts StartOptions) (browser.Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Install {
		if err := Install(engineName(opts.Engine)); err != nil {
			return nil, err
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		// Driver and library versions can drift; install once and retry.
		logger.Warn("playwright driver failed to start, reinstalling", zap.Error(err))
		if ierr := Install(engineName(opts.Engine)); ierr != nil {
			return nil, errors.Join(err, ierr)
		}
		pw, err = playwright.Run()
		if err != nil {
			return nil, fmt.Errorf("could not start playwright after reinstall: %w", err)
		}
	}
	return &engine{pw: pw, logger: logger}, nil
}

func engineName(name string) string {
	if name == "" {
		return "chromium"
	}
	return name
}

type engine struct {
	pw     *playwright.Playwright
	logger *zap.Logger
}

func (e *engine) Launch(opts browser.LaunchOptions) (browser.Browser, error) {
	var bt playwright.BrowserType
	switch engineName(opts.Engine) {
	case "chromium":
		bt = e.pw.Chromium
	case "firefox":
		bt = e.pw.Firefox
	case "webkit":
		bt = e.pw.WebKit
	default:
		return nil, fmt.Errorf("unknown browser engine %q", opts.Engine)
	}

	b, err := bt.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		SlowMo:   playwright.Float(float64(opts.SlowMo.Milliseconds())),
	})
	if err != nil {
		return nil, fmt.Errorf("could not launch %s: %w", engineName(opts.Engine), err)
	}
	return &browserImpl{b: b, logger: e.logger}, nil
}

func (e *engine) Stop() error {
	return e.pw.Stop()
}

type browserImpl struct {
	b      playwright.Browser
	logger *zap.Logger
}

func (b *browserImpl) NewContext(opts browser.ContextOptions) (browser.Context, error) {
	o := playwright.BrowserNewContextOptions{}
	if opts.ViewportWidth > 0 && opts.ViewportHeight > 0 {
		o.Viewport = &playwright.Size{Width: opts.ViewportWidth, Height: opts.ViewportHeight}
	}
	if opts.VideoDir != "" {
		o.RecordVideo = &playwright.RecordVideo{Dir: opts.VideoDir}
	}
	ctx, err := b.b.NewContext(o)
	if err != nil {
		return nil, fmt.Errorf("could not create context: %w", err)
	}
	if opts.LogRequests {
		logger := b.logger
		ctx.OnRequest(func(req playwright.Request) {
			logger.Debug("request", zap.String("method", req.Method()), zap.String("url", req.URL()))
		})
	}
	return &contextImpl{ctx: ctx, opts: opts}, nil
}

func (b *browserImpl) IsConnected() bool { return b.b.IsConnected() }

func (b *browserImpl) Close() error { return b.b.Close() }

type contextImpl struct {
	ctx  playwright.BrowserContext
	opts browser.ContextOptions
}

func (c *contextImpl) NewPage() (browser.Page, error) {
	p, err := c.ctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	applyTimeouts(p, c.opts)
	return &page{p: p}, nil
}

// timeoutSetter is the part of playwright.Page that carries default timeouts.
type timeoutSetter interface {
	SetDefaultTimeout(timeout float64)
	SetDefaultNavigationTimeout(timeout float64)
}

// applyTimeouts sets the page defaults used by calls without a timeout option.
func applyTimeouts(p timeoutSetter, opts browser.ContextOptions) {
	if opts.DefaultTimeout > 0 {
		p.SetDefaultTimeout(*ms(opts.DefaultTimeout))
	}
	nav := opts.NavigationTimeout
	if nav <= 0 {
		nav = opts.DefaultTimeout
	}
	if nav > 0 {
		p.SetDefaultNavigationTimeout(*ms(nav))
	}
}

func (c *contextImpl) ClearCookies() error { return c.ctx.ClearCookies() }

func (c *contextImpl) Close() error { return c.ctx.Close() }

// ms converts a duration to the float milliseconds playwright expects.
func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

// translate maps playwright's timeout sentinel onto browser.ErrTimeout while
// keeping the original message.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %w", browser.ErrTimeout, err)
	}
	return err
}
