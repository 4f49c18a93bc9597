package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

var knownEngines = []string{"chromium", "firefox", "webkit"}

var knownMarkups = []string{"select2", "native"}

var knownReports = []string{"junit", "markdown", "html", "xlsx", "metrics", "yaml"}

// Validator checks a loaded Config before any browser work starts.
type Validator struct {
	config   *Config
	errors   []string
	warnings []string
}

func NewValidator(cfg *Config) *Validator {
	return &Validator{
		config:   cfg,
		errors:   []string{},
		warnings: []string{},
	}
}

// Validate returns an error listing every problem found. Warnings never fail validation.
func (v *Validator) Validate() error {
	v.validateBaseURL()
	v.validateCredentials()
	v.validateTimeouts()
	v.validateAssetDefaults()
	v.validateBrowser()
	v.validateArtifacts()
	v.oneOf("markup", v.config.Markup, knownMarkups)

	if len(v.errors) > 0 {
		return fmt.Errorf("config validation failed:\n%s", strings.Join(v.errors, "\n"))
	}
	return nil
}

// Warnings returns the non-fatal findings of the last Validate call.
func (v *Validator) Warnings() []string {
	return v.warnings
}

func (v *Validator) validateBaseURL() {
	raw := v.config.BaseURL
	if raw == "" {
		v.addError("base_url is not set")
		return
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		v.addError(fmt.Sprintf("base_url %q is not an absolute URL", raw))
		return
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		v.addError(fmt.Sprintf("base_url scheme must be http or https, got %q", u.Scheme))
		return
	}
	if u.Scheme == "http" && u.Hostname() != "localhost" && u.Hostname() != "127.0.0.1" {
		v.addWarning("base_url uses plain http against a non-local host")
	}
}

func (v *Validator) validateCredentials() {
	if strings.TrimSpace(v.config.Credentials.Username) == "" {
		v.addError("credentials.username is not set")
	}
	if v.config.Credentials.Password == "" {
		v.addWarning("credentials.password is empty")
	}
}

func (v *Validator) validateTimeouts() {
	t := v.config.Timeouts
	named := []struct {
		key   string
		value time.Duration
	}{
		{"timeouts.default", t.Default},
		{"timeouts.short", t.Short},
		{"timeouts.long", t.Long},
		{"timeouts.probe", t.Probe},
		{"timeouts.poll_interval", t.PollInterval},
	}
	ok := true
	for _, n := range named {
		if n.value <= 0 {
			v.addError(n.key + " must be positive")
			ok = false
		}
	}
	if !ok {
		return
	}
	if t.Short > t.Default {
		v.addError("timeouts.short must not exceed timeouts.default")
	}
	if t.Default > t.Long {
		v.addError("timeouts.default must not exceed timeouts.long")
	}
	if t.Probe > t.Default {
		v.addWarning("timeouts.probe is longer than timeouts.default")
	}
	if t.PollInterval >= t.Short {
		v.addWarning("timeouts.poll_interval is not shorter than timeouts.short")
	}
}

func (v *Validator) validateAssetDefaults() {
	d := v.config.AssetDefaults
	if strings.TrimSpace(d.Model) == "" {
		v.addError("asset_defaults.model is not set")
	}
	if strings.TrimSpace(d.Status) == "" {
		v.addError("asset_defaults.status is not set")
	}
}

func (v *Validator) validateBrowser() {
	b := v.config.Browser
	v.oneOf("browser.engine", b.Engine, knownEngines)
	if b.Viewport.Width <= 0 || b.Viewport.Height <= 0 {
		v.addError("browser.viewport width and height must be positive")
	}
	if b.SlowMo < 0 {
		v.addError("browser.slow_mo must not be negative")
	}
	if !b.Headless && b.SlowMo == 0 {
		v.addWarning("headed browser without slow_mo is hard to follow")
	}
}

func (v *Validator) validateArtifacts() {
	a := v.config.Artifacts
	if a.Dir == "" && (a.Screenshots || a.Videos || len(a.Reports) > 0) {
		v.addError("artifacts.dir is required when screenshots, videos or reports are enabled")
	}
	for _, r := range a.Reports {
		v.oneOf("artifacts.reports", strings.ToLower(strings.TrimSpace(r)), knownReports)
	}
}

func (v *Validator) oneOf(key, value string, allowed []string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.addError(fmt.Sprintf("%s must be one of %s, got %q", key, strings.Join(allowed, ", "), value))
}

func (v *Validator) addError(message string) {
	v.errors = append(v.errors, "   ❌ "+message)
}

func (v *Validator) addWarning(message string) {
	v.warnings = append(v.warnings, "   ⚠️  "+message)
}

// Validate is a shorthand for NewValidator(cfg).Validate().
func Validate(cfg *Config) error {
	return NewValidator(cfg).Validate()
}
