package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed default.yaml
var defaultYAML []byte

// EnvPrefix is prepended to every environment override, e.g. SNIPEIT_E2E_BASE_URL.
const EnvPrefix = "SNIPEIT_E2E"

// Config is the flat option set recognized by the suite. It is read once per
// run and never reloaded.
type Config struct {
	BaseURL       string              `mapstructure:"base_url" yaml:"base_url"`
	Credentials   CredentialsConfig   `mapstructure:"credentials" yaml:"credentials"`
	Timeouts      TimeoutsConfig      `mapstructure:"timeouts" yaml:"timeouts"`
	AssetDefaults AssetDefaultsConfig `mapstructure:"asset_defaults" yaml:"asset_defaults"`
	Markup        string              `mapstructure:"markup" yaml:"markup"`
	Browser       BrowserConfig       `mapstructure:"browser" yaml:"browser"`
	Artifacts     ArtifactsConfig     `mapstructure:"artifacts" yaml:"artifacts"`
	Run           RunConfig           `mapstructure:"run" yaml:"run"`
	Logging       LoggingConfig       `mapstructure:"logging" yaml:"logging"`
}

type CredentialsConfig struct {
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"-"`
}

type TimeoutsConfig struct {
	Default      time.Duration `mapstructure:"default" yaml:"default"`
	Short        time.Duration `mapstructure:"short" yaml:"short"`
	Long         time.Duration `mapstructure:"long" yaml:"long"`
	Probe        time.Duration `mapstructure:"probe" yaml:"probe"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// AssetDefaultsConfig holds the attributes every generated asset is created with.
type AssetDefaultsConfig struct {
	Model        string `mapstructure:"model" yaml:"model"`
	Status       string `mapstructure:"status" yaml:"status"`
	Manufacturer string `mapstructure:"manufacturer" yaml:"manufacturer"`
	Category     string `mapstructure:"category" yaml:"category"`
}

type BrowserConfig struct {
	Engine      string        `mapstructure:"engine" yaml:"engine"`
	Headless    bool          `mapstructure:"headless" yaml:"headless"`
	SlowMo      time.Duration `mapstructure:"slow_mo" yaml:"slow_mo"`
	Install     bool          `mapstructure:"install" yaml:"install"`
	LogRequests bool          `mapstructure:"log_requests" yaml:"log_requests"`
	Viewport    struct {
		Width  int `mapstructure:"width" yaml:"width"`
		Height int `mapstructure:"height" yaml:"height"`
	} `mapstructure:"viewport" yaml:"viewport"`
}

type ArtifactsConfig struct {
	Dir         string   `mapstructure:"dir" yaml:"dir"`
	Screenshots bool     `mapstructure:"screenshots" yaml:"screenshots"`
	Videos      bool     `mapstructure:"videos" yaml:"videos"`
	Reports     []string `mapstructure:"reports" yaml:"reports"`
}

type RunConfig struct {
	Seed      uint64   `mapstructure:"seed" yaml:"seed"`
	FailFast  bool     `mapstructure:"fail_fast" yaml:"fail_fast"`
	AssetTag  string   `mapstructure:"asset_tag" yaml:"asset_tag"`
	Scenarios []string `mapstructure:"scenarios" yaml:"scenarios"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Binder lets callers attach extra sources (usually cobra flags) before unmarshalling.
type Binder func(v *viper.Viper) error

// Load builds the configuration from the embedded defaults, an optional
// config file and SNIPEIT_E2E_* environment variables, in that order of
// increasing precedence. A .env file in the working directory is preloaded
// into the environment without overriding variables that are already set.
func Load(configFile string, bind Binder) (*Config, error) {
	LoadDotEnv(".env")

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultYAML)); err != nil {
		return nil, fmt.Errorf("failed to read default config: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to merge config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.MergeInConfig(); err != nil {
			// It's OK if config.yaml doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to merge config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if bind != nil {
		if err := bind(v); err != nil {
			return nil, fmt.Errorf("failed to bind overrides: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg, nil
}

// MustLoad loads configuration and panics on error
func MustLoad(configFile string) *Config {
	cfg, err := Load(configFile, nil)
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}
	return cfg
}

// URL joins a path onto the base URL.
func (c *Config) URL(path string) string {
	if path == "" {
		return c.BaseURL
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.BaseURL + path
}

// Host returns the host part of the base URL, or "" when it does not parse.
func (c *Config) Host() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// ScreenshotDir is where failure screenshots are written.
func (a *ArtifactsConfig) ScreenshotDir() string {
	return filepath.Join(a.Dir, "screenshots")
}

// VideoDir is where session recordings are written when videos are enabled.
func (a *ArtifactsConfig) VideoDir() string {
	return filepath.Join(a.Dir, "videos")
}

// ReportEnabled reports whether the named report format was requested.
func (a *ArtifactsConfig) ReportEnabled(name string) bool {
	for _, r := range a.Reports {
		if strings.EqualFold(strings.TrimSpace(r), name) {
			return true
		}
	}
	return false
}

// ScenarioSelected reports whether a scenario should run. An empty selection runs everything.
func (r *RunConfig) ScenarioSelected(name string) bool {
	if len(r.Scenarios) == 0 {
		return true
	}
	for _, s := range r.Scenarios {
		if s == name {
			return true
		}
	}
	return false
}
