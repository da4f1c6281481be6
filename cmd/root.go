// Package cmd implements the relampo-editor command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relampo/relampo-yml-editor-sub000/internal/config"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/logger"
)

// Version is the current release.
const Version = "0.1.0"

var (
	cfgFile string
	envFile string
	debug   bool
	quiet   bool

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "relampo-editor",
	Short: "Edit Relampo YAML load tests as a tree",
	Long: `relampo-editor keeps a Relampo YAML test definition and its tree view in
sync. It formats, outlines and lints test files and serves the editor over a
REST API.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "log errors only")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// setup loads the configuration and installs the process logger.
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.NewLoader().
		WithConfigPath(cfgFile).
		WithEnvFile(envFile).
		Load()
	if err != nil {
		return err
	}
	if err := config.Validate(loaded); err != nil {
		return err
	}

	logCfg := loaded.Log.Logger()
	switch {
	case debug:
		logCfg.Level = "debug"
	case quiet:
		logCfg.Level = "error"
	}
	logger.Set(logger.New(logCfg))
	cfg = loaded
	return nil
}

// GetRootCmd returns the root command for tests.
func GetRootCmd() *cobra.Command {
	return rootCmd
}
