package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gotrs-io/snipeit-e2e/internal/runner"
	"github.com/gotrs-io/snipeit-e2e/internal/scenario"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scenario suite against a Snipe-IT instance",
	Long: `Run executes the scenarios in order against base_url. A failing scenario
aborts the rest unless --fail-fast=false. Reports are written to the
artifacts directory. The exit status is 1 when any scenario failed.`,
	Example: `  snipeit-e2e run --base-url https://demo.snipeitapp.com
  snipeit-e2e run --scenario search-asset --asset-tag AB12CD34 --headed --slow-mo 250ms`,
	RunE: runRun,
}

// runFlags maps flag names to configuration keys.
var runFlags = map[string]string{
	"base-url":  "base_url",
	"username":  "credentials.username",
	"password":  "credentials.password",
	"markup":    "markup",
	"engine":    "browser.engine",
	"slow-mo":   "browser.slow_mo",
	"install":   "browser.install",
	"artifacts": "artifacts.dir",
	"report":    "artifacts.reports",
	"videos":    "artifacts.videos",
	"seed":      "run.seed",
	"asset-tag": "run.asset_tag",
	"scenario":  "run.scenarios",
	"fail-fast": "run.fail_fast",
}

var headed bool

func init() {
	f := runCmd.Flags()
	f.String("base-url", "", "Snipe-IT base URL")
	f.String("username", "", "Login username")
	f.String("password", "", "Login password")
	f.String("markup", "", "Markup variant: select2 or native")
	f.String("engine", "", "Browser engine: chromium, firefox or webkit")
	f.Duration("slow-mo", 0, "Delay between browser operations")
	f.Bool("install", true, "Install the playwright driver and browser before starting")
	f.BoolVar(&headed, "headed", false, "Show the browser window")
	f.String("artifacts", "", "Directory for screenshots, videos and reports")
	f.StringSlice("report", nil, "Report formats to write (junit, markdown, html, xlsx, metrics, yaml)")
	f.Bool("videos", false, "Record a video of the session")
	f.Uint64("seed", 0, "Seed for generated test data (0 picks one)")
	f.String("asset-tag", "", "Create the asset with this tag instead of a generated one")
	f.StringSlice("scenario", nil, "Run only these scenarios and the ones they depend on")
	f.Bool("fail-fast", true, "Skip the remaining scenarios after a failure")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd, runFlags)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	if headed {
		cfg.Browser.Headless = false
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run, err := runner.Execute(ctx, runner.Options{
		Config:  cfg,
		Logger:  logger,
		Out:     cmd.OutOrStdout(),
		Verbose: verbose,
		NoColor: noColor,
	})
	if err != nil {
		return err
	}
	for _, p := range run.Reports {
		fmt.Fprintf(cmd.OutOrStdout(), "report: %s\n", p)
	}
	if !run.Results.OK() {
		logger.Warn("run failed", zap.Int("failed", run.Results.Count(scenario.Failed)), zap.Uint64("seed", run.Seed))
		return errFailed
	}
	return nil
}
