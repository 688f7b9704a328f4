package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/gr/internal/config"
	"github.com/joescharf/gr/internal/gerrit"
	"github.com/joescharf/gr/internal/git"
	"github.com/joescharf/gr/internal/output"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui *output.UI

	verbose bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "gr",
	Short: "Code review from the terminal",
	Long: `gr talks to a Gerrit-compatible review server to list, inspect, review,
merge and check out changes without leaving the terminal.

The server is the host of the "origin" remote of the current repository.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, exitMessage(err))
		os.Exit(1)
	}
}

// exitMessage formats err for the terminal. Server and subprocess failures are
// printed as-is since they already carry the response body or captured stderr.
func exitMessage(err error) string {
	var apiErr *gerrit.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	var cmdErr *git.CmdError
	if errors.As(err, &cmdErr) {
		return cmdErr.Error()
	}
	return "Error: " + err.Error()
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/gr/config.yaml)")
}

func initConfig() {
	viper.SetEnvPrefix("GR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun
}

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = config.DefaultDir

// configFilePath returns --config when given, else <config dir>/config.yaml.
func configFilePath() (string, error) {
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		return cfgFile, nil
	}
	dir, err := configDirFunc()
	if err != nil {
		return "", fmt.Errorf("cannot find config directory: %w", err)
	}
	return filepath.Join(dir, config.FileName), nil
}
