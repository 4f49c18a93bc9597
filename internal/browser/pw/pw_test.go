package pw

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"

	"github.com/gotrs-io/snipeit-e2e/internal/browser"
)

func TestTranslateTimeout(t *testing.T) {
	err := translate(fmt.Errorf("locator.click: %w", playwright.ErrTimeout))
	assert.ErrorIs(t, err, browser.ErrTimeout)
	assert.ErrorIs(t, err, playwright.ErrTimeout)

	other := errors.New("target closed")
	assert.Same(t, other, translate(other))
	assert.NoError(t, translate(nil))
}

func TestMilliseconds(t *testing.T) {
	assert.Equal(t, 1500.0, *ms(1500*time.Millisecond))
	assert.Equal(t, 0.0, *ms(0))
}

type recordedTimeouts struct {
	def, nav float64
}

func (r *recordedTimeouts) SetDefaultTimeout(timeout float64)           { r.def = timeout }
func (r *recordedTimeouts) SetDefaultNavigationTimeout(timeout float64) { r.nav = timeout }

func TestApplyTimeouts(t *testing.T) {
	r := &recordedTimeouts{}
	applyTimeouts(r, browser.ContextOptions{DefaultTimeout: 10 * time.Second})
	assert.Equal(t, 10000.0, r.def)
	assert.Equal(t, 10000.0, r.nav, "navigation falls back to the default")

	r = &recordedTimeouts{}
	applyTimeouts(r, browser.ContextOptions{DefaultTimeout: 5 * time.Second, NavigationTimeout: time.Minute})
	assert.Equal(t, 5000.0, r.def)
	assert.Equal(t, 60000.0, r.nav)

	r = &recordedTimeouts{}
	applyTimeouts(r, browser.ContextOptions{})
	assert.Zero(t, r.def, "zero keeps the engine default")
	assert.Zero(t, r.nav)
}

func TestEngineName(t *testing.T) {
	assert.Equal(t, "chromium", engineName(""))
	assert.Equal(t, "firefox", engineName("firefox"))
}
