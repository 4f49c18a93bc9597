package htmlfake

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/gotrs-io/snipeit-e2e/internal/browser"
)

type stepKind int

const (
	stepCSS stepKind = iota
	stepNth
	stepText
)

type step struct {
	kind stepKind
	css  string
	n    int
	text string
}

// Locator is a lazily evaluated chain of selector, index and text steps.
type Locator struct {
	page  *Page
	steps []step
}

func (l *Locator) with(s step) *Locator {
	steps := make([]step, len(l.steps), len(l.steps)+1)
	copy(steps, l.steps)
	return &Locator{page: l.page, steps: append(steps, s)}
}

func (l *Locator) Selector() string {
	var b strings.Builder
	for i, s := range l.steps {
		switch s.kind {
		case stepCSS:
			if i > 0 {
				b.WriteString(" >> ")
			}
			b.WriteString(s.css)
		case stepNth:
			fmt.Fprintf(&b, " >> nth=%d", s.n)
		case stepText:
			fmt.Fprintf(&b, " >> has-text=%q", s.text)
		}
	}
	return b.String()
}

func (l *Locator) First() browser.Locator { return l.with(step{kind: stepNth, n: 0}) }

func (l *Locator) Nth(i int) browser.Locator { return l.with(step{kind: stepNth, n: i}) }

func (l *Locator) Locator(selector string) browser.Locator {
	return l.with(step{kind: stepCSS, css: selector})
}

func (l *Locator) FilterText(s string) browser.Locator {
	return l.with(step{kind: stepText, text: s})
}

// resolve evaluates the chain against the current document. Callers hold
// the page lock.
func (l *Locator) resolve() *goquery.Selection {
	sel := l.page.doc.Selection
	for _, s := range l.steps {
		switch s.kind {
		case stepCSS:
			sel = sel.Find(s.css)
		case stepNth:
			sel = sel.Eq(s.n)
		case stepText:
			want := strings.ToLower(normalize(s.text))
			sel = sel.FilterFunction(func(_ int, el *goquery.Selection) bool {
				return strings.Contains(strings.ToLower(normalize(el.Text())), want)
			})
		}
	}
	return sel
}

func (l *Locator) Count() (int, error) {
	var n int
	err := l.page.poll(0, "count "+l.Selector(), func() (bool, error) {
		n = l.resolve().Length()
		return true, nil
	})
	return n, err
}

func (l *Locator) WaitFor(state browser.WaitState, timeout time.Duration) error {
	return l.page.poll(timeout, fmt.Sprintf("waiting for %s to be %s", l.Selector(), state), func() (bool, error) {
		el := l.resolve().First()
		switch state {
		case browser.StateAttached:
			return el.Length() > 0, nil
		case browser.StateDetached:
			return el.Length() == 0, nil
		case browser.StateHidden:
			return el.Length() == 0 || !visible(el), nil
		default:
			return el.Length() > 0 && visible(el), nil
		}
	})
}

// act waits for the first match to be actionable and runs fn on it under
// the page lock.
func (l *Locator) act(action string, timeout time.Duration, force bool, fn func(el *goquery.Selection) error) error {
	var actionErr error
	err := l.page.poll(timeout, action+" "+l.Selector(), func() (bool, error) {
		el := l.resolve().First()
		if el.Length() == 0 {
			return false, nil
		}
		if !force && (!visible(el) || !enabled(el)) {
			return false, nil
		}
		actionErr = fn(el)
		return true, nil
	})
	if err != nil {
		return err
	}
	return actionErr
}

func (l *Locator) Click(timeout time.Duration, force bool) error {
	return l.act("click", timeout, force, l.page.clickLocked)
}

func (l *Locator) Fill(value string, timeout time.Duration) error {
	return l.act("fill", timeout, false, func(el *goquery.Selection) error {
		switch {
		case el.Is("textarea"):
			el.SetText(value)
		case el.Is("input"):
			switch strings.ToLower(el.AttrOr("type", "text")) {
			case "checkbox", "radio", "submit", "button", "image", "reset", "file", "hidden":
				return fmt.Errorf("fill %s: input of type %q cannot be filled", l.Selector(), el.AttrOr("type", ""))
			}
			el.SetAttr("value", value)
		case el.Is("[contenteditable]"):
			el.SetText(value)
		default:
			return fmt.Errorf("fill %s: element is not an <input>, <textarea> or [contenteditable] element", l.Selector())
		}
		l.page.focused = el
		for _, s := range l.page.scriptsFor(el) {
			if s.OnFill != nil {
				s.OnFill(l.page.doc, el, value)
			}
		}
		return nil
	})
}

func (l *Locator) Clear(timeout time.Duration) error {
	return l.Fill("", timeout)
}

func (l *Locator) Press(key string, timeout time.Duration) error {
	return l.act("press", timeout, false, func(el *goquery.Selection) error {
		return l.page.pressLocked(el, key)
	})
}

func (l *Locator) SelectOption(label string, timeout time.Duration) error {
	return l.act("select option", timeout, false, func(el *goquery.Selection) error {
		if !el.Is("select") {
			return fmt.Errorf("select option %s: element is not a <select> element", l.Selector())
		}
		var match *goquery.Selection
		el.Find("option").EachWithBreak(func(_ int, opt *goquery.Selection) bool {
			if normalize(opt.Text()) == normalize(label) || optionValue(opt) == label {
				match = opt
				return false
			}
			return true
		})
		if match == nil {
			return fmt.Errorf("%w: option %q not found in %s", browser.ErrTimeout, label, l.Selector())
		}
		selectOption(el, match)
		return nil
	})
}

// read resolves the first match without waiting; a missing element is an
// error the way a detached element is for a real driver.
func (l *Locator) read(fn func(el *goquery.Selection) (string, error)) (string, error) {
	var out string
	err := l.page.poll(0, "read "+l.Selector(), func() (bool, error) {
		el := l.resolve().First()
		if el.Length() == 0 {
			return false, fmt.Errorf("%w: no element matches %s", browser.ErrElementNotFound, l.Selector())
		}
		v, err := fn(el)
		out = v
		return true, err
	})
	return out, err
}

func (l *Locator) TextContent() (string, error) {
	return l.read(func(el *goquery.Selection) (string, error) { return el.Text(), nil })
}

func (l *Locator) InnerText() (string, error) {
	return l.read(func(el *goquery.Selection) (string, error) { return normalize(el.Text()), nil })
}

func (l *Locator) InputValue() (string, error) {
	return l.read(func(el *goquery.Selection) (string, error) {
		switch {
		case el.Is("textarea"):
			return el.Text(), nil
		case el.Is("select"):
			return optionValue(selectedOption(el)), nil
		case el.Is("input"):
			return el.AttrOr("value", ""), nil
		}
		return "", fmt.Errorf("input value %s: not an <input>, <textarea> or <select> element", l.Selector())
	})
}

func (l *Locator) Attribute(name string) (string, bool, error) {
	var ok bool
	v, err := l.read(func(el *goquery.Selection) (string, error) {
		var v string
		v, ok = el.Attr(name)
		return v, nil
	})
	return v, ok, err
}

func (l *Locator) IsVisible() (bool, error) {
	var vis bool
	err := l.page.poll(0, "visible "+l.Selector(), func() (bool, error) {
		el := l.resolve().First()
		vis = el.Length() > 0 && visible(el)
		return true, nil
	})
	return vis, err
}

func (l *Locator) IsEnabled() (bool, error) {
	var en bool
	_, err := l.read(func(el *goquery.Selection) (string, error) {
		en = enabled(el)
		return "", nil
	})
	return en, err
}

func (l *Locator) AllInnerTexts() ([]string, error) {
	var out []string
	err := l.page.poll(0, "texts "+l.Selector(), func() (bool, error) {
		l.resolve().Each(func(_ int, el *goquery.Selection) {
			out = append(out, normalize(el.Text()))
		})
		return true, nil
	})
	return out, err
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func visible(el *goquery.Selection) bool {
	if el.Is("input[type='hidden']") {
		return false
	}
	for n := el; n.Length() > 0; n = n.Parent() {
		switch goquery.NodeName(n) {
		case "head", "script", "style", "template", "title":
			return false
		}
		if _, ok := n.Attr("hidden"); ok {
			return false
		}
		if style, ok := n.Attr("style"); ok {
			compact := strings.ToLower(strings.ReplaceAll(style, " ", ""))
			if strings.Contains(compact, "display:none") || strings.Contains(compact, "visibility:hidden") {
				return false
			}
		}
	}
	return true
}

func enabled(el *goquery.Selection) bool {
	_, disabled := el.Attr("disabled")
	return !disabled
}
