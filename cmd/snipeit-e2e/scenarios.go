package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gotrs-io/snipeit-e2e/internal/pages"
	"github.com/gotrs-io/snipeit-e2e/internal/runner"
	"github.com/gotrs-io/snipeit-e2e/internal/scenario"
	"github.com/gotrs-io/snipeit-e2e/internal/snipeit"
	"github.com/gotrs-io/snipeit-e2e/internal/testdata"
)

var scenariosCmd = &cobra.Command{
	Use:     "scenarios",
	Aliases: []string{"ls"},
	Short:   "List the scenarios in execution order with the state they pass on",
	RunE:    runScenarios,
}

func init() {
	scenariosCmd.Flags().StringSlice("scenario", nil, "Show only the selection and its dependencies")
	rootCmd.AddCommand(scenariosCmd)
}

func runScenarios(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd, map[string]string{"scenario": "run.scenarios"})
	if err != nil {
		return err
	}
	variant, err := snipeit.ParseVariant(cfg.Markup)
	if err != nil {
		return err
	}
	app := snipeit.NewApp(snipeit.Options{BaseURL: cfg.BaseURL, Variant: variant, Timeouts: pages.TimeoutsFrom(cfg.Timeouts)})
	list, _, err := runner.Scenarios(cfg, app, testdata.New(cfg.AssetDefaults, cfg.Run.Seed))
	if err != nil {
		return err
	}
	if err := scenario.Plan(list); err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tISOLATION\tREQUIRES\tPRODUCES\tSTEPS\tDESCRIPTION")
	for i, s := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n", i+1, s.Name, s.Isolation, keys(s.Requires), keys(s.Produces), len(s.Steps), s.Description)
	}
	return w.Flush()
}

func keys(ks []scenario.Key) string {
	if len(ks) == 0 {
		return "-"
	}
	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = string(k)
	}
	return strings.Join(out, ",")
}
