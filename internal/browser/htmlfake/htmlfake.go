// Package htmlfake is an in-process implementation of the browser contract.
// Pages are served by an http.Handler, parsed with goquery and queried with
// CSS selectors. Links navigate, submit buttons and Enter submit their form,
// and Scripts emulate the client-side widgets a handler's markup relies on.
package htmlfake

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/gotrs-io/snipeit-e2e/internal/browser"
)

// ErrClosed is returned by operations on a closed page, context or browser.
var ErrClosed = errors.New("target closed")

// Script emulates client-side behaviour for elements matching Selector.
// When OnClick is set it replaces the default click action.
type Script struct {
	Selector string
	OnClick  func(doc *goquery.Document, target *goquery.Selection)
	OnFill   func(doc *goquery.Document, target *goquery.Selection, value string)
}

// Option configures an Engine.
type Option func(*Engine)

// WithScripts registers client-side emulation scripts.
func WithScripts(scripts ...Script) Option {
	return func(e *Engine) { e.scripts = append(e.scripts, scripts...) }
}

// WithLogger sets the logger used for request logging.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// Engine serves every page from handler.
type Engine struct {
	handler http.Handler
	scripts []Script
	logger  *zap.Logger

	mu       sync.Mutex
	stopped  bool
	browsers []*Browser
}

// New returns an engine backed by handler.
func New(handler http.Handler, opts ...Option) *Engine {
	e := &Engine{handler: handler, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Launch(opts browser.LaunchOptions) (browser.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return nil, fmt.Errorf("launch %s: %w", opts.Engine, ErrClosed)
	}
	b := &Browser{engine: e}
	e.browsers = append(e.browsers, b)
	return b, nil
}

func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return nil
	}
	e.stopped = true
	for _, b := range e.browsers {
		b.disconnect()
	}
	return nil
}

// Browser is a launched fake browser.
type Browser struct {
	engine *Engine

	mu       sync.Mutex
	closed   bool
	contexts []*Context
}

func (b *Browser) NewContext(opts browser.ContextOptions) (browser.Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("new context: %w", ErrClosed)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Context{browser: b, opts: opts, jar: jar}
	b.contexts = append(b.contexts, c)
	return c, nil
}

func (b *Browser) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed
}

func (b *Browser) Close() error {
	b.disconnect()
	return nil
}

// Disconnect simulates the browser process going away underneath the test.
func (b *Browser) Disconnect() { b.disconnect() }

func (b *Browser) disconnect() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	contexts := b.contexts
	b.mu.Unlock()
	for _, c := range contexts {
		_ = c.Close()
	}
}

// Context is a fake browsing context with its own cookie jar.
type Context struct {
	browser *Browser
	opts    browser.ContextOptions

	mu       sync.Mutex
	jar      *cookiejar.Jar
	closed   bool
	pages    []*Page
	requests []string
}

func (c *Context) NewPage() (browser.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, fmt.Errorf("new page: %w", ErrClosed)
	}
	p := newPage(c)
	c.pages = append(c.pages, p)
	return p, nil
}

func (c *Context) ClearCookies() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("clear cookies: %w", ErrClosed)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	c.jar = jar
	return nil
}

// Cookies returns the cookies the context would send to rawURL.
func (c *Context) Cookies(rawURL string) []*http.Cookie {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return c.cookieJar().Cookies(u)
}

// Requests lists every request issued by the context as "METHOD path?query".
func (c *Context) Requests() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.requests...)
}

func (c *Context) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	pages := c.pages
	c.mu.Unlock()
	for _, p := range pages {
		_ = p.Close()
	}
	return nil
}

func (c *Context) cookieJar() *cookiejar.Jar {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.jar
}

func (c *Context) record(method string, u *url.URL) {
	c.mu.Lock()
	c.requests = append(c.requests, method+" "+u.RequestURI())
	c.mu.Unlock()
	if c.opts.LogRequests {
		c.browser.engine.logger.Debug("request", zap.String("method", method), zap.String("url", u.String()))
	}
}
