package session

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gotrs-io/snipeit-e2e/internal/browser"
	"github.com/gotrs-io/snipeit-e2e/internal/browser/htmlfake"
)

var errGone = errors.New("browser has been closed")

func site() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "snipeit_session", Value: "1", Path: "/"})
		fmt.Fprint(w, "<html><body><h1>ok</h1></body></html>")
	})
}

// recorder wraps the fake driver, logs every lifecycle call and lets a test
// inject failures per step.
type recorder struct {
	calls []string
	fail  map[string]error
}

func (r *recorder) hit(step string) error {
	r.calls = append(r.calls, step)
	return r.fail[step]
}

type recEngine struct {
	browser.Engine
	r *recorder
}

func (e *recEngine) Launch(o browser.LaunchOptions) (browser.Browser, error) {
	if err := e.r.hit("launch"); err != nil {
		return nil, err
	}
	b, err := e.Engine.Launch(o)
	if err != nil {
		return nil, err
	}
	return &recBrowser{Browser: b, r: e.r}, nil
}

func (e *recEngine) Stop() error {
	if err := e.r.hit("stop engine"); err != nil {
		return err
	}
	return e.Engine.Stop()
}

type recBrowser struct {
	browser.Browser
	r *recorder
}

func (b *recBrowser) NewContext(o browser.ContextOptions) (browser.Context, error) {
	if err := b.r.hit("new context"); err != nil {
		return nil, err
	}
	c, err := b.Browser.NewContext(o)
	if err != nil {
		return nil, err
	}
	return &recContext{Context: c, r: b.r}, nil
}

func (b *recBrowser) Close() error {
	if err := b.r.hit("close browser"); err != nil {
		return err
	}
	if !b.Browser.IsConnected() {
		return errGone
	}
	return b.Browser.Close()
}

type recContext struct {
	browser.Context
	r *recorder
}

func (c *recContext) NewPage() (browser.Page, error) {
	if err := c.r.hit("new page"); err != nil {
		return nil, err
	}
	return c.Context.NewPage()
}

func (c *recContext) Close() error {
	if err := c.r.hit("close context"); err != nil {
		return err
	}
	return c.Context.Close()
}

func starter(r *recorder, engine *htmlfake.Engine) Starter {
	return func() (browser.Engine, error) {
		if err := r.hit("start"); err != nil {
			return nil, err
		}
		return &recEngine{Engine: engine, r: r}, nil
	}
}

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return zap.New(core), logs
}

func TestOpenCloseOrder(t *testing.T) {
	r := &recorder{}
	m := New(Options{Launch: browser.LaunchOptions{Engine: "chromium", Headless: true}})

	page, err := m.Open(starter(r, htmlfake.New(site())))
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.True(t, m.IsOpen())
	assert.Same(t, page, m.Page())

	_, err = m.Open(starter(r, htmlfake.New(site())))
	assert.ErrorIs(t, err, ErrAlreadyOpen)

	m.Close()
	assert.Equal(t, []string{
		"start", "launch", "new context", "new page",
		"close context", "close browser", "stop engine",
	}, r.calls)
	assert.False(t, m.IsOpen())
	assert.Empty(t, m.TeardownErrors())

	m.Close()
	assert.Len(t, r.calls, 7, "closing twice is a no-op")
}

func TestOpenPartialFailureTearsDown(t *testing.T) {
	for _, step := range []string{"launch", "new context", "new page"} {
		t.Run("failure at "+step, func(t *testing.T) {
			boom := errors.New(step + " exploded")
			r := &recorder{fail: map[string]error{step: boom}}
			m := New(Options{})

			_, err := m.Open(starter(r, htmlfake.New(site())))
			require.ErrorIs(t, err, boom)
			assert.False(t, m.IsOpen())
			assert.Equal(t, "stop engine", r.calls[len(r.calls)-1], "engine is always stopped")
		})
	}

	t.Run("failure at start leaves nothing to close", func(t *testing.T) {
		r := &recorder{fail: map[string]error{"start": errors.New("no driver")}}
		m := New(Options{})
		_, err := m.Open(starter(r, htmlfake.New(site())))
		require.Error(t, err)
		assert.Equal(t, []string{"start"}, r.calls)
	})
}

func TestCloseAfterBrowserWentAway(t *testing.T) {
	r := &recorder{}
	logger, logs := observed()
	m := New(Options{Logger: logger})

	engine := htmlfake.New(site())
	_, err := m.Open(starter(r, engine))
	require.NoError(t, err)

	// Closing the browser underneath the manager.
	rb := m.browser.(*recBrowser)
	rb.Browser.(*htmlfake.Browser).Disconnect()

	assert.NotPanics(t, m.Close)
	assert.Contains(t, r.calls, "stop engine", "later steps still run")

	errs := m.TeardownErrors()
	require.Len(t, errs, 1)
	var te *TeardownError
	require.ErrorAs(t, errs[0], &te)
	assert.Equal(t, "browser", te.Step)
	assert.ErrorIs(t, te, errGone)

	warnings := logs.FilterMessage("teardown step failed").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "browser", warnings[0].ContextMap()["step"])
}

func TestCloseAttemptsEveryStep(t *testing.T) {
	r := &recorder{fail: map[string]error{
		"close context": errors.New("context gone"),
		"stop engine":   errors.New("driver crashed"),
	}}
	m := New(Options{})
	_, err := m.Open(starter(r, htmlfake.New(site())))
	require.NoError(t, err)

	m.Close()
	assert.Contains(t, r.calls, "close browser")
	assert.Len(t, m.TeardownErrors(), 2)
}

func TestReset(t *testing.T) {
	m := New(Options{})
	assert.ErrorIs(t, m.Reset(), ErrNotOpen)

	page, err := m.Open(func() (browser.Engine, error) { return htmlfake.New(site()), nil })
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, page.Goto("http://snipeit.test/", time.Second))
	fc := m.Context().(*htmlfake.Context)
	require.Len(t, fc.Cookies("http://snipeit.test/"), 1)
	page.(*htmlfake.Page).SetStorage("remember", "1")

	require.NoError(t, m.Reset())
	assert.Empty(t, fc.Cookies("http://snipeit.test/"))
	assert.Empty(t, page.(*htmlfake.Page).Storage())
}

func TestCaptureFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "screenshots")
	fixed := time.Date(2026, 10, 17, 14, 5, 9, 0, time.UTC)
	logger, logs := observed()

	m := New(Options{ScreenshotDir: dir, Logger: logger, Now: func() time.Time { return fixed }})
	assert.Empty(t, m.CaptureFailure("login"), "nothing to capture before open")

	page, err := m.Open(func() (browser.Engine, error) { return htmlfake.New(site()), nil })
	require.NoError(t, err)
	require.NoError(t, page.Goto("http://snipeit.test/", time.Second))

	path := m.CaptureFailure("create asset/1")
	assert.Equal(t, filepath.Join(dir, "screenshot-create-asset-1-20261017-140509.png"), path)
	assert.FileExists(t, path)
	assert.Equal(t, 1, logs.FilterMessage("screenshot saved").Len())

	require.NoError(t, page.Close())
	assert.Empty(t, m.CaptureFailure("closed"), "capture errors are swallowed")
	assert.Equal(t, 1, logs.FilterMessage("could not capture screenshot").Len())
	m.Close()

	disabled := New(Options{})
	assert.Empty(t, disabled.CaptureFailure("x"))
	_, err = os.Stat(filepath.Join(dir, "x"))
	assert.True(t, os.IsNotExist(err))
}
