package htmlfake

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/gotrs-io/snipeit-e2e/internal/browser"
)

const (
	maxRedirects = 10
	pollInterval = 10 * time.Millisecond
	blankPage    = "<html><head><title></title></head><body></body></html>"
)

// Page is a fake tab holding the parsed document of the last response.
type Page struct {
	ctx *Context

	mu      sync.Mutex
	closed  bool
	url     *url.URL
	doc     *goquery.Document
	status  int
	focused *goquery.Selection
	storage map[string]string
}

func newPage(c *Context) *Page {
	doc, _ := goquery.NewDocumentFromReader(strings.NewReader(blankPage))
	u, _ := url.Parse("about:blank")
	return &Page{ctx: c, url: u, doc: doc, storage: map[string]string{}}
}

func (p *Page) Goto(rawURL string, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("goto %s: %w", rawURL, ErrClosed)
	}
	return p.load(http.MethodGet, rawURL, nil)
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url.String()
}

// Status returns the HTTP status of the last loaded document.
func (p *Page) Status() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Page) Title() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return "", ErrClosed
	}
	return strings.TrimSpace(p.doc.Find("title").First().Text()), nil
}

func (p *Page) Locator(selector string) browser.Locator {
	return &Locator{page: p, steps: []step{{kind: stepCSS, css: selector}}}
}

func (p *Page) Press(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if p.focused == nil {
		return nil
	}
	return p.pressLocked(p.focused, key)
}

func (p *Page) WaitForURL(match func(string) bool, timeout time.Duration) error {
	return p.poll(timeout, "url to match", func() (bool, error) {
		return match(p.url.String()), nil
	})
}

// Screenshot writes the current document markup to path.
func (p *Page) Screenshot(path string) error {
	content, err := p.Content()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("screenshot %s: %w", path, err)
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func (p *Page) Content() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return "", ErrClosed
	}
	return p.doc.Html()
}

func (p *Page) ClearStorage() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	clear(p.storage)
	return nil
}

// SetStorage stores a web storage entry for the page.
func (p *Page) SetStorage(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.storage[key] = value
}

// Storage returns a copy of the page's web storage.
func (p *Page) Storage() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]string, len(p.storage))
	for k, v := range p.storage {
		out[k] = v
	}
	return out
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// poll runs try under the page lock until it reports true, fails, or the
// timeout elapses. try is always run at least once.
func (p *Page) poll(timeout time.Duration, what string, try func() (bool, error)) error {
	deadline := time.Now().Add(timeout)
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return fmt.Errorf("%s: %w", what, ErrClosed)
		}
		ok, err := try()
		p.mu.Unlock()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("%w: %s exceeded %s", browser.ErrTimeout, what, timeout)
		}
		time.Sleep(pollInterval)
	}
}

// load issues a request, follows redirects and replaces the document.
// Callers hold p.mu.
func (p *Page) load(method, target string, form url.Values) error {
	u, err := p.url.Parse(target)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", target, err)
	}
	if method == http.MethodGet && form != nil {
		u.RawQuery = form.Encode()
		form = nil
	}

	for redirects := 0; ; redirects++ {
		if redirects > maxRedirects {
			return fmt.Errorf("%s %s: stopped after %d redirects", method, target, maxRedirects)
		}
		var body io.Reader
		if form != nil {
			body = strings.NewReader(form.Encode())
		}
		req, err := http.NewRequest(method, u.String(), body)
		if err != nil {
			return err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
		jar := p.ctx.cookieJar()
		for _, c := range jar.Cookies(u) {
			req.AddCookie(c)
		}
		p.ctx.record(method, u)

		rec := httptest.NewRecorder()
		p.ctx.browser.engine.handler.ServeHTTP(rec, req)
		res := rec.Result()
		if cookies := res.Cookies(); len(cookies) > 0 {
			jar.SetCookies(u, cookies)
		}

		if loc := res.Header.Get("Location"); loc != "" && res.StatusCode >= 300 && res.StatusCode < 400 {
			next, err := u.Parse(loc)
			if err != nil {
				return fmt.Errorf("invalid redirect %q: %w", loc, err)
			}
			if res.StatusCode != http.StatusTemporaryRedirect && res.StatusCode != http.StatusPermanentRedirect {
				method, form = http.MethodGet, nil
			}
			u = next
			continue
		}

		doc, err := goquery.NewDocumentFromReader(res.Body)
		if err != nil {
			return fmt.Errorf("parse %s: %w", u, err)
		}
		p.doc, p.url, p.status, p.focused = doc, u, res.StatusCode, nil
		return nil
	}
}

func (p *Page) scriptsFor(target *goquery.Selection) []Script {
	var out []Script
	for _, s := range p.ctx.browser.engine.scripts {
		if target.Is(s.Selector) {
			out = append(out, s)
		}
	}
	return out
}

// clickLocked performs the default action of a click. Callers hold p.mu.
func (p *Page) clickLocked(target *goquery.Selection) error {
	p.focused = target
	handled := false
	for _, s := range p.scriptsFor(target) {
		if s.OnClick != nil {
			s.OnClick(p.doc, target)
			handled = true
		}
	}
	if handled {
		return nil
	}

	if link := target.Closest("a[href]"); link.Length() > 0 {
		href, _ := link.Attr("href")
		switch {
		case href == "" || strings.HasPrefix(href, "javascript:"):
			return nil
		case strings.HasPrefix(href, "#"):
			p.url.Fragment = strings.TrimPrefix(href, "#")
			return nil
		}
		return p.load(http.MethodGet, href, nil)
	}

	if isSubmitter(target) {
		return p.submitLocked(target, target)
	}

	switch {
	case target.Is("input[type='checkbox'], input[type='radio']"):
		if _, checked := target.Attr("checked"); checked && target.Is("input[type='checkbox']") {
			target.RemoveAttr("checked")
		} else {
			target.SetAttr("checked", "checked")
		}
	case target.Is("option"):
		selectOption(target.Closest("select"), target)
	}
	return nil
}

func (p *Page) pressLocked(target *goquery.Selection, key string) error {
	p.focused = target
	if key != "Enter" || target.Is("textarea") {
		return nil
	}
	if isSubmitter(target) {
		return p.submitLocked(target, target)
	}
	if target.Is("input") {
		return p.submitLocked(target, nil)
	}
	return nil
}

func isSubmitter(s *goquery.Selection) bool {
	if s.Is("button") {
		t, _ := s.Attr("type")
		return t == "" || strings.EqualFold(t, "submit")
	}
	return s.Is("input[type='submit'], input[type='image']")
}

// submitLocked submits the form owning from. submitter, when non-nil,
// contributes its name and value.
func (p *Page) submitLocked(from, submitter *goquery.Selection) error {
	form := from.Closest("form")
	if id, ok := from.Attr("form"); ok && id != "" {
		form = p.doc.Find("form#" + id)
	}
	if form.Length() == 0 {
		return nil
	}

	values := formValues(form)
	if submitter != nil {
		if name, ok := submitter.Attr("name"); ok && name != "" {
			v, _ := submitter.Attr("value")
			values.Add(name, v)
		}
	}

	method := strings.ToUpper(strings.TrimSpace(form.AttrOr("method", http.MethodGet)))
	if method != http.MethodPost {
		method = http.MethodGet
	}
	action := form.AttrOr("action", "")
	if action == "" {
		action = p.url.String()
	}
	return p.load(method, action, values)
}

func formValues(form *goquery.Selection) url.Values {
	values := url.Values{}
	form.Find("input, textarea, select").Each(func(_ int, el *goquery.Selection) {
		name, ok := el.Attr("name")
		if !ok || name == "" {
			return
		}
		if _, disabled := el.Attr("disabled"); disabled {
			return
		}
		switch goquery.NodeName(el) {
		case "textarea":
			values.Add(name, el.Text())
		case "select":
			if opt := selectedOption(el); opt.Length() > 0 {
				values.Add(name, optionValue(opt))
			}
		default:
			switch strings.ToLower(el.AttrOr("type", "text")) {
			case "submit", "button", "image", "reset", "file":
				return
			case "checkbox", "radio":
				if _, checked := el.Attr("checked"); !checked {
					return
				}
				values.Add(name, el.AttrOr("value", "on"))
			default:
				values.Add(name, el.AttrOr("value", ""))
			}
		}
	})
	return values
}

func selectedOption(sel *goquery.Selection) *goquery.Selection {
	opt := sel.Find("option[selected]").First()
	if opt.Length() == 0 {
		opt = sel.Find("option").First()
	}
	return opt
}

func optionValue(opt *goquery.Selection) string {
	if v, ok := opt.Attr("value"); ok {
		return v
	}
	return strings.TrimSpace(opt.Text())
}

func selectOption(sel, opt *goquery.Selection) {
	sel.Find("option").RemoveAttr("selected")
	opt.SetAttr("selected", "selected")
}
