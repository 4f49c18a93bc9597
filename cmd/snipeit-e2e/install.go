package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gotrs-io/snipeit-e2e/internal/browser/pw"
)

var installCmd = &cobra.Command{
	Use:       "install [engine...]",
	Short:     "Download the playwright driver and browser engines",
	Long:      `Install downloads the playwright driver and the named engines (default: chromium) so later runs can start offline.`,
	Args:      cobra.OnlyValidArgs,
	ValidArgs: []string{"chromium", "firefox", "webkit"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"chromium"}
		}
		if err := pw.Install(args...); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "installed playwright driver and %v\n", args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
