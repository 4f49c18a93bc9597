// Package runner wires configuration, the browser session, the Snipe-IT
// suite and the reports into one run.
package runner

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/gotrs-io/snipeit-e2e/internal/browser"
	"github.com/gotrs-io/snipeit-e2e/internal/browser/pw"
	"github.com/gotrs-io/snipeit-e2e/internal/config"
	"github.com/gotrs-io/snipeit-e2e/internal/models"
	"github.com/gotrs-io/snipeit-e2e/internal/pages"
	"github.com/gotrs-io/snipeit-e2e/internal/report"
	"github.com/gotrs-io/snipeit-e2e/internal/scenario"
	"github.com/gotrs-io/snipeit-e2e/internal/session"
	"github.com/gotrs-io/snipeit-e2e/internal/snipeit"
	"github.com/gotrs-io/snipeit-e2e/internal/testdata"
	"github.com/gotrs-io/snipeit-e2e/internal/version"
)

// Options configures a run.
type Options struct {
	Config *config.Config
	Logger *zap.Logger
	// Out receives the console report. Nil disables it.
	Out     io.Writer
	Verbose bool
	NoColor bool
	// Start brings up the browser engine. Nil starts playwright.
	Start session.Starter
	// Reporters are notified in addition to the console.
	Reporters []scenario.Reporter
}

// Run is the outcome of a run.
type Run struct {
	Results *scenario.Results
	Asset   models.Asset
	Seed    uint64
	Reports []string
}

// Scenarios builds the configured suite: the asset to create comes from
// the generator, with run.asset_tag overriding its tag, and run.scenarios
// narrows the suite to the selection and whatever it depends on.
func Scenarios(cfg *config.Config, app *snipeit.App, gen *testdata.Generator) ([]scenario.Scenario, models.Asset, error) {
	asset := gen.Asset()
	if cfg.Run.AssetTag != "" {
		asset.Tag = cfg.Run.AssetTag
	}
	all := snipeit.Suite(snipeit.SuiteConfig{App: app, Credentials: cfg.Credentials, Asset: asset})
	if len(cfg.Run.Scenarios) == 0 {
		return all, asset, nil
	}
	selected, err := scenario.Subset(all, cfg.Run.Scenarios)
	return selected, asset, err
}

// Execute runs the suite once. The error reports setup failures only;
// scenario failures are in the results.
func Execute(ctx context.Context, opts Options) (*Run, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	variant, err := snipeit.ParseVariant(cfg.Markup)
	if err != nil {
		return nil, err
	}
	app := snipeit.NewApp(snipeit.Options{
		BaseURL:  cfg.BaseURL,
		Variant:  variant,
		Timeouts: pages.TimeoutsFrom(cfg.Timeouts),
		Logger:   logger,
		Context:  ctx,
	})
	gen := testdata.New(cfg.AssetDefaults, cfg.Run.Seed)
	scenarios, asset, err := Scenarios(cfg, app, gen)
	if err != nil {
		return nil, err
	}
	logger.Info("starting run",
		zap.String("version", version.String()),
		zap.String("base_url", cfg.BaseURL),
		zap.Stringer("markup", variant),
		zap.Uint64("seed", gen.Seed()),
		zap.String("asset_tag", asset.Tag),
		zap.Int("scenarios", len(scenarios)))

	mgr := session.New(sessionOptions(cfg, logger))
	start := opts.Start
	if start == nil {
		start = func() (browser.Engine, error) {
			return pw.Start(pw.StartOptions{Install: cfg.Browser.Install, Engine: cfg.Browser.Engine, Logger: logger})
		}
	}
	if _, err := mgr.Open(start); err != nil {
		return nil, fmt.Errorf("open browser session: %w", err)
	}
	defer mgr.Close()

	reporters := scenario.MultiReporter(opts.Reporters)
	if opts.Out != nil {
		reporters = append(scenario.MultiReporter{report.NewConsole(opts.Out, opts.Verbose, opts.NoColor)}, reporters...)
	}
	results, err := scenario.NewRunner(mgr, scenario.Options{
		FailFast: cfg.Run.FailFast,
		Reporter: reporters,
		Logger:   logger,
	}).Run(ctx, scenarios)
	if err != nil {
		return nil, err
	}

	run := &Run{Results: results, Asset: asset, Seed: gen.Seed()}
	run.Reports, err = report.WriteAll(cfg.Artifacts.Dir, cfg.Artifacts.Reports, results, logger)
	if err != nil {
		logger.Error("writing reports failed", zap.Error(err))
	}
	return run, nil
}

func sessionOptions(cfg *config.Config, logger *zap.Logger) session.Options {
	opts := session.Options{
		Launch: browser.LaunchOptions{
			Engine:   cfg.Browser.Engine,
			Headless: cfg.Browser.Headless,
			SlowMo:   cfg.Browser.SlowMo,
		},
		Context: browser.ContextOptions{
			ViewportWidth:     cfg.Browser.Viewport.Width,
			ViewportHeight:    cfg.Browser.Viewport.Height,
			LogRequests:       cfg.Browser.LogRequests,
			DefaultTimeout:    cfg.Timeouts.Default,
			NavigationTimeout: cfg.Timeouts.Default,
		},
		Logger: logger,
	}
	if cfg.Artifacts.Screenshots {
		opts.ScreenshotDir = cfg.Artifacts.ScreenshotDir()
	}
	if cfg.Artifacts.Videos {
		opts.Context.VideoDir = cfg.Artifacts.VideoDir()
	}
	return opts
}
