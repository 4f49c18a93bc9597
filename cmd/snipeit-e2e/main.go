package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/gotrs-io/snipeit-e2e/internal/config"
	"github.com/gotrs-io/snipeit-e2e/internal/logging"
	"github.com/gotrs-io/snipeit-e2e/internal/version"
)

// errFailed makes the process exit 1 without printing a second message.
var errFailed = errors.New("scenarios failed")

var rootCmd = &cobra.Command{
	Use:   "snipeit-e2e",
	Short: "End-to-end UI checks for a Snipe-IT installation",
	Long: `snipeit-e2e drives a real browser through the Snipe-IT asset lifecycle:
sign in, create an asset, find it in recent activity and search, inspect its
detail page and history, then delete it.

Settings come from built-in defaults, an optional config.yaml, SNIPEIT_E2E_*
environment variables (a .env file is loaded first) and command line flags.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configFile string
	verbose    bool
	noColor    bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to a YAML config file (default ./config.yaml when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print every step and debug logs")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored console output")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.GetInfo()
		fmt.Fprintf(cmd.OutOrStdout(), "snipeit-e2e %s\n", version.Full())
		if info.Playwright != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "playwright-go %s\n", info.Playwright)
		}
	},
}

// flagBinder binds the flags of cmd that are set onto config keys.
func flagBinder(cmd *cobra.Command, keys map[string]string) config.Binder {
	return func(v *viper.Viper) error {
		for flag, key := range keys {
			f := cmd.Flags().Lookup(flag)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
		if verbose {
			v.Set("logging.level", "debug")
		}
		return nil
	}
}

// loadConfig loads and validates configuration, printing warnings to stderr.
func loadConfig(cmd *cobra.Command, keys map[string]string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configFile, flagBinder(cmd, keys))
	if err != nil {
		return nil, nil, err
	}
	v := config.NewValidator(cfg)
	if err := v.Validate(); err != nil {
		return nil, nil, err
	}
	for _, w := range v.Warnings() {
		fmt.Fprintln(cmd.ErrOrStderr(), w)
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
