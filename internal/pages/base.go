// Package pages provides the base every page object is built on: element
// actions resolved through a locator.Resolver, tolerant reads, lazy row
// queries and bounded state waits.
package pages

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gotrs-io/snipeit-e2e/internal/browser"
	"github.com/gotrs-io/snipeit-e2e/internal/config"
	"github.com/gotrs-io/snipeit-e2e/internal/locator"
	"github.com/gotrs-io/snipeit-e2e/internal/wait"
)

// Timeouts bounds every wait a page object performs.
type Timeouts struct {
	Default time.Duration
	Short   time.Duration
	Long    time.Duration
	Probe   time.Duration
	Poll    time.Duration
}

// TimeoutsFrom converts the configured timeouts.
func TimeoutsFrom(cfg config.TimeoutsConfig) Timeouts {
	return Timeouts{
		Default: cfg.Default,
		Short:   cfg.Short,
		Long:    cfg.Long,
		Probe:   cfg.Probe,
		Poll:    cfg.PollInterval,
	}
}

// Options configures a Base.
type Options struct {
	BaseURL  string
	Timeouts Timeouts
	Logger   *zap.Logger
	Tracer   Tracer
	// Context cancels navigation and element waits. Defaults to
	// context.Background.
	Context context.Context
}

// ErrRowDetached reports a row that left the page between counting and
// reading it, as happens when a table is redrawn. WaitForState treats it
// as a state that has not settled yet.
var ErrRowDetached = errors.New("row detached from the page")

// Base is embedded by every page object. It holds no DOM state; each call
// re-resolves its selectors against the live page.
type Base struct {
	page     browser.Page
	resolver *locator.Resolver
	timeouts Timeouts
	baseURL  string
	logger   *zap.Logger
	tracer   Tracer
	ctx      context.Context
}

// NewBase binds a page to a resolver.
func NewBase(page browser.Page, resolver *locator.Resolver, opts Options) *Base {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return &Base{
		ctx:      ctx,
		page:     page,
		resolver: resolver,
		timeouts: opts.Timeouts,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		logger:   logger,
		tracer:   opts.Tracer,
	}
}

func (b *Base) Page() browser.Page { return b.page }

func (b *Base) Timeouts() Timeouts { return b.timeouts }

func (b *Base) Logger() *zap.Logger { return b.logger }

// URL joins path onto the application base URL.
func (b *Base) URL(path string) string {
	if path == "" {
		return b.baseURL
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return b.baseURL + path
}

// CurrentURL returns the URL of the page.
func (b *Base) CurrentURL() string { return b.page.URL() }

// Navigate loads path and waits for the element that defines the page.
// An empty defining name skips the element wait.
func (b *Base) Navigate(path string, defining locator.Name) error {
	return b.Open(b.URL(path), defining)
}

// Open loads an absolute URL and waits for the defining element.
func (b *Base) Open(url string, defining locator.Name) error {
	b.logger.Debug("navigate", zap.String("url", url))
	if err := b.ctx.Err(); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := b.page.Goto(url, b.timeouts.Default); err != nil {
		return &browser.NavigationTimeoutError{URL: url, Timeout: b.timeouts.Default, Err: err}
	}
	if defining == "" {
		return nil
	}
	if err := b.WaitPresent(defining, b.timeouts.Default); err != nil {
		return &browser.NavigationTimeoutError{URL: url, Timeout: b.timeouts.Default, Err: err}
	}
	return nil
}

// WaitPresent waits until any selector of name is attached.
func (b *Base) WaitPresent(name locator.Name, timeout time.Duration) error {
	entry, err := b.resolver.Entry(name)
	if err != nil {
		return err
	}
	err = wait.Probe(b.ctx, string(name), timeout, b.timeouts.Poll, func(context.Context) (bool, error) {
		for _, sel := range entry.Selectors() {
			n, err := b.page.Locator(sel).Count()
			if err != nil {
				return false, err
			}
			if n > 0 {
				return true, nil
			}
		}
		return false, nil
	})
	var te *wait.TimeoutError
	if errors.As(err, &te) {
		return fmt.Errorf("%w: %w", &browser.ElementNotFoundError{Name: string(name), Selectors: entry.Selectors()}, err)
	}
	return err
}

// WaitVisible resolves name and waits for it to be visible.
func (b *Base) WaitVisible(name locator.Name, timeout time.Duration) error {
	loc, err := b.resolver.Resolve(b.page, name)
	if err != nil {
		return err
	}
	if err := loc.First().WaitFor(browser.StateVisible, timeout); err != nil {
		return &browser.ElementNotInteractableError{Name: string(name), Selector: loc.Selector(), Action: "wait visible", Err: err}
	}
	return nil
}

// WaitForURL waits until the page URL satisfies match.
func (b *Base) WaitForURL(desc string, match func(string) bool, timeout time.Duration) error {
	if err := b.page.WaitForURL(match, timeout); err != nil {
		return &browser.NavigationTimeoutError{URL: desc, Timeout: timeout, Err: err}
	}
	return nil
}

// do runs fn on the first match of name once it is visible, tracking the
// action state.
func (b *Base) do(action string, name locator.Name, fn func(loc browser.Locator) error) error {
	t := &tracked{action: action, name: name, state: Idle, tracer: b.tracer, logger: b.logger}

	t.to(Probing)
	loc, err := b.resolver.Resolve(b.page, name)
	if err != nil {
		t.to(NotFound)
		return err
	}
	t.to(Found)
	return b.act(t, loc.First(), fn)
}

func (b *Base) act(t *tracked, loc browser.Locator, fn func(loc browser.Locator) error) error {
	notInteractable := func(err error) error {
		t.to(ActionFailed)
		return &browser.ElementNotInteractableError{Name: string(t.name), Selector: loc.Selector(), Action: t.action, Err: err}
	}
	if err := loc.WaitFor(browser.StateVisible, b.timeouts.Default); err != nil {
		return notInteractable(err)
	}
	t.to(Acting)
	if err := fn(loc); err != nil {
		if errors.Is(err, browser.ErrTimeout) {
			return notInteractable(err)
		}
		t.to(ActionFailed)
		return fmt.Errorf("%s %s: %w", t.action, t.name, err)
	}
	t.to(Succeeded)
	return nil
}

// Fill clears name and types value into it.
func (b *Base) Fill(name locator.Name, value string) error {
	return b.do("fill", name, func(loc browser.Locator) error {
		if err := loc.Clear(b.timeouts.Default); err != nil {
			return err
		}
		return loc.Fill(value, b.timeouts.Default)
	})
}

// Click clicks name once it is visible and enabled.
func (b *Base) Click(name locator.Name) error {
	return b.do("click", name, func(loc browser.Locator) error {
		return loc.Click(b.timeouts.Default, false)
	})
}

// ClickLocator clicks an already narrowed locator, such as a row link.
// desc names the element in errors.
func (b *Base) ClickLocator(desc string, loc browser.Locator) error {
	t := &tracked{action: "click", name: locator.Name(desc), state: Found, tracer: b.tracer, logger: b.logger}
	if n, err := loc.Count(); err != nil || n == 0 {
		t.to(NotFound)
		return &browser.ElementNotFoundError{Name: desc, Selectors: []string{loc.Selector()}}
	}
	return b.act(t, loc, func(loc browser.Locator) error {
		return loc.Click(b.timeouts.Default, false)
	})
}

// ClickText clicks the first element of name whose text contains text,
// such as one entry of a menu that shares a selector with its siblings.
func (b *Base) ClickText(name locator.Name, text string) error {
	t := &tracked{action: "click", name: name, state: Idle, tracer: b.tracer, logger: b.logger}

	t.to(Probing)
	loc, err := b.resolver.Resolve(b.page, name)
	if err != nil {
		t.to(NotFound)
		return err
	}
	target := loc.FilterText(text).First()
	if n, err := target.Count(); err != nil || n == 0 {
		t.to(NotFound)
		return &browser.ElementNotFoundError{Name: fmt.Sprintf("%s %q", name, text), Selectors: []string{loc.Selector()}}
	}
	t.to(Found)
	return b.act(t, target, func(loc browser.Locator) error {
		return loc.Click(b.timeouts.Default, false)
	})
}

// Press sends key to name.
func (b *Base) Press(name locator.Name, key string) error {
	return b.do("press "+key, name, func(loc browser.Locator) error {
		return loc.Press(key, b.timeouts.Default)
	})
}

// Select picks the option with the given visible label in a native select.
func (b *Base) Select(name locator.Name, label string) error {
	return b.do("select", name, func(loc browser.Locator) error {
		return loc.SelectOption(label, b.timeouts.Default)
	})
}

// Read returns the trimmed text of name, or "" when it is absent. Only
// unknown names and driver failures are errors.
func (b *Base) Read(name locator.Name) (string, error) {
	return b.read(name, func(loc browser.Locator) (string, error) { return loc.InnerText() })
}

// ReadValue returns the trimmed value of an input, or "" when it is absent.
func (b *Base) ReadValue(name locator.Name) (string, error) {
	return b.read(name, func(loc browser.Locator) (string, error) { return loc.InputValue() })
}

func (b *Base) read(name locator.Name, get func(browser.Locator) (string, error)) (string, error) {
	loc, err := b.resolver.Select(b.page, name)
	if err != nil {
		return "", err
	}
	first := loc.First()
	n, err := first.Count()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	v, err := get(first)
	if errors.Is(err, browser.ErrElementNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return strings.TrimSpace(v), nil
}

// IsVisible reports whether name is currently visible, without waiting.
func (b *Base) IsVisible(name locator.Name) (bool, error) {
	loc, err := b.resolver.Select(b.page, name)
	if err != nil {
		return false, err
	}
	return loc.First().IsVisible()
}

// Count returns how many elements currently match name.
func (b *Base) Count(name locator.Name) (int, error) {
	loc, err := b.resolver.Select(b.page, name)
	if err != nil {
		return 0, err
	}
	return loc.Count()
}

// Query yields the elements matching name that satisfy pred. The sequence
// is lazy and finite, and every range over it rescans the page.
func (b *Base) Query(name locator.Name, pred RowPredicate) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		loc, err := b.resolver.Select(b.page, name)
		if err != nil {
			yield(Row{}, err)
			return
		}
		n, err := loc.Count()
		if err != nil {
			yield(Row{}, err)
			return
		}
		for i := range n {
			row, err := readRow(loc, n, i)
			if err != nil {
				if !yield(Row{}, fmt.Errorf("row %d of %s: %w", i, name, err)) {
					return
				}
				continue
			}
			if pred != nil && !pred(row) {
				continue
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}

// readRow reads the text and cells of the i-th of n matches of loc.
func readRow(loc browser.Locator, n, i int) (Row, error) {
	item := loc.Nth(i)
	text, err := item.InnerText()
	if err == nil {
		var cells []string
		cells, err = item.Locator("td").AllInnerTexts()
		if err == nil {
			return Row{Index: i, Text: strings.TrimSpace(text), Cells: cells, loc: item}, nil
		}
	}
	if detached(loc, n, err) {
		return Row{}, fmt.Errorf("%w: %w", ErrRowDetached, err)
	}
	return Row{}, err
}

// detached reports whether a failed row read was caused by the set of
// matches changing underneath it.
func detached(loc browser.Locator, n int, err error) bool {
	if errors.Is(err, browser.ErrElementNotFound) {
		return true
	}
	now, cerr := loc.Count()
	return cerr == nil && now != n
}

// WaitForState polls cond until it holds. A zero timeout uses the default
// timeout; no wait exceeds the long timeout. A condition failing with
// ErrRowDetached is polled again.
func (b *Base) WaitForState(ctx context.Context, desc string, cond wait.Condition, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = b.timeouts.Default
	}
	if b.timeouts.Long > 0 && timeout > b.timeouts.Long {
		timeout = b.timeouts.Long
	}
	var last error
	err := wait.Until(ctx, desc, timeout, b.timeouts.Poll, func(ctx context.Context) (bool, error) {
		ok, err := cond(ctx)
		if errors.Is(err, ErrRowDetached) {
			b.logger.Debug("rows changed while reading, polling again", zap.String("condition", desc), zap.Error(err))
			last = err
			return false, nil
		}
		return ok, err
	})
	var te *wait.TimeoutError
	if errors.As(err, &te) && te.Last == nil {
		te.Last = last
	}
	return err
}
