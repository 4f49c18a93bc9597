package pw

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/gotrs-io/snipeit-e2e/internal/browser"
)

const clearStorageScript = `() => { try { window.localStorage.clear(); window.sessionStorage.clear(); } catch (e) {} }`

type page struct {
	p playwright.Page
}

func (p *page) Goto(url string, timeout time.Duration) error {
	_, err := p.p.Goto(url, playwright.PageGotoOptions{
		Timeout:   ms(timeout),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	return translate(err)
}

func (p *page) URL() string { return p.p.URL() }

func (p *page) Title() (string, error) { return p.p.Title() }

func (p *page) Locator(selector string) browser.Locator {
	return &locator{l: p.p.Locator(selector), selector: selector}
}

func (p *page) Press(key string) error {
	return translate(p.p.Keyboard().Press(key))
}

func (p *page) WaitForURL(match func(string) bool, timeout time.Duration) error {
	return translate(p.p.WaitForURL(match, playwright.PageWaitForURLOptions{Timeout: ms(timeout)}))
}

func (p *page) Screenshot(path string) error {
	_, err := p.p.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("screenshot %s: %w", path, err)
	}
	return nil
}

func (p *page) Content() (string, error) { return p.p.Content() }

func (p *page) ClearStorage() error {
	_, err := p.p.Evaluate(clearStorageScript)
	return err
}

func (p *page) Close() error { return p.p.Close() }

type locator struct {
	l        playwright.Locator
	selector string
}

func (l *locator) wrap(next playwright.Locator, selector string) browser.Locator {
	return &locator{l: next, selector: selector}
}

func (l *locator) Selector() string { return l.selector }

func (l *locator) First() browser.Locator { return l.wrap(l.l.First(), l.selector+" >> nth=0") }

func (l *locator) Nth(i int) browser.Locator {
	return l.wrap(l.l.Nth(i), fmt.Sprintf("%s >> nth=%d", l.selector, i))
}

func (l *locator) Locator(selector string) browser.Locator {
	return l.wrap(l.l.Locator(selector), l.selector+" "+selector)
}

func (l *locator) FilterText(s string) browser.Locator {
	return l.wrap(l.l.Filter(playwright.LocatorFilterOptions{HasText: s}), fmt.Sprintf("%s >> has-text=%q", l.selector, s))
}

func (l *locator) Count() (int, error) { return l.l.Count() }

func (l *locator) WaitFor(state browser.WaitState, timeout time.Duration) error {
	var s *playwright.WaitForSelectorState
	switch state {
	case browser.StateAttached:
		s = playwright.WaitForSelectorStateAttached
	case browser.StateDetached:
		s = playwright.WaitForSelectorStateDetached
	case browser.StateHidden:
		s = playwright.WaitForSelectorStateHidden
	default:
		s = playwright.WaitForSelectorStateVisible
	}
	return translate(l.l.WaitFor(playwright.LocatorWaitForOptions{State: s, Timeout: ms(timeout)}))
}

func (l *locator) Click(timeout time.Duration, force bool) error {
	return translate(l.l.Click(playwright.LocatorClickOptions{Timeout: ms(timeout), Force: playwright.Bool(force)}))
}

func (l *locator) Fill(value string, timeout time.Duration) error {
	return translate(l.l.Fill(value, playwright.LocatorFillOptions{Timeout: ms(timeout)}))
}

func (l *locator) Clear(timeout time.Duration) error {
	return translate(l.l.Clear(playwright.LocatorClearOptions{Timeout: ms(timeout)}))
}

func (l *locator) Press(key string, timeout time.Duration) error {
	return translate(l.l.Press(key, playwright.LocatorPressOptions{Timeout: ms(timeout)}))
}

func (l *locator) SelectOption(label string, timeout time.Duration) error {
	_, err := l.l.SelectOption(
		playwright.SelectOptionValues{Labels: &[]string{label}},
		playwright.LocatorSelectOptionOptions{Timeout: ms(timeout)},
	)
	return translate(err)
}

func (l *locator) TextContent() (string, error) {
	s, err := l.l.TextContent()
	return s, translate(err)
}

func (l *locator) InnerText() (string, error) {
	s, err := l.l.InnerText()
	return s, translate(err)
}

func (l *locator) InputValue() (string, error) {
	s, err := l.l.InputValue()
	return s, translate(err)
}

func (l *locator) Attribute(name string) (string, bool, error) {
	v, err := l.l.GetAttribute(name)
	if err != nil {
		return "", false, err
	}
	return v, v != "", nil
}

func (l *locator) IsVisible() (bool, error) { return l.l.IsVisible() }

func (l *locator) IsEnabled() (bool, error) { return l.l.IsEnabled() }

func (l *locator) AllInnerTexts() ([]string, error) {
	texts, err := l.l.AllInnerTexts()
	return texts, translate(err)
}
