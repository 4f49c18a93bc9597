package main

import (
	"github.com/spf13/cobra"

	"github.com/gotrs-io/snipeit-e2e/internal/browser"
	"github.com/gotrs-io/snipeit-e2e/internal/runner"
	"github.com/gotrs-io/snipeit-e2e/internal/snipeit"
	"github.com/gotrs-io/snipeit-e2e/internal/snipeit/snipeittest"
)

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Run the suite against a built-in imitation of Snipe-IT",
	Long: `Selftest runs every scenario in-process against a fake Snipe-IT that
renders the configured markup variant. No browser or network is needed, so
it checks the selectors and the scenario wiring on any machine.`,
	RunE: runSelftest,
}

var selftestFlags = map[string]string{
	"markup":    "markup",
	"artifacts": "artifacts.dir",
	"report":    "artifacts.reports",
	"seed":      "run.seed",
	"asset-tag": "run.asset_tag",
	"scenario":  "run.scenarios",
}

func init() {
	f := selftestCmd.Flags()
	f.String("markup", "", "Markup variant: select2 or native")
	f.String("artifacts", "", "Directory for screenshots and reports")
	f.StringSlice("report", nil, "Report formats to write")
	f.Uint64("seed", 0, "Seed for generated test data (0 picks one)")
	f.String("asset-tag", "", "Create the asset with this tag instead of a generated one")
	f.StringSlice("scenario", nil, "Run only these scenarios and the ones they depend on")

	rootCmd.AddCommand(selftestCmd)
}

func runSelftest(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd, selftestFlags)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	variant, err := snipeit.ParseVariant(cfg.Markup)
	if err != nil {
		return err
	}
	site := snipeittest.New(variant,
		snipeittest.WithCredentials(cfg.Credentials.Username, cfg.Credentials.Password),
		snipeittest.WithModels(cfg.AssetDefaults.Model),
		snipeittest.WithStatuses(cfg.AssetDefaults.Status),
		snipeittest.WithLogger(logger.Named("fake-snipeit")),
	)
	cfg.BaseURL = "http://snipeit.test"

	run, err := runner.Execute(cmd.Context(), runner.Options{
		Config:  cfg,
		Logger:  logger,
		Out:     cmd.OutOrStdout(),
		Verbose: verbose,
		NoColor: noColor,
		Start:   func() (browser.Engine, error) { return site.Engine(), nil },
	})
	if err != nil {
		return err
	}
	if !run.Results.OK() {
		return errFailed
	}
	return nil
}
