// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the dataio application.
// It implements subcommands that run DeployR data input/output examples and
// plans, manage credentials and configure the export database, using the
// Cobra CLI framework. Run narration goes to stderr through zerolog; prompts,
// summaries and errors are rendered with pterm.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"dataio/cli/internal/config"
	"dataio/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	showVersion  bool
	flagEndpoint string
	flagConfig   string
	flagLogLevel string
	flagVerbose  bool

	// cfg is loaded before every command runs.
	cfg = config.Defaults()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dataio",
	Short: "Run DeployR data input/output examples",
	Long: `dataio runs data input/output examples against a DeployR server: anonymous and
authenticated script executions, stateful projects, repository preloads, file
uploads and encoded R objects in both directions. Results can be downloaded
and exported to PostgreSQL or MySQL.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if flagConfig != "" {
			cfg, err = config.LoadFile(flagConfig)
		} else {
			cfg, err = config.Load()
		}
		level := cfg.LogLevel
		if flagLogLevel != "" {
			level = flagLogLevel
		}
		if flagVerbose {
			level = "debug"
		}
		logging.Setup(level, os.Stderr)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("dataio %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// endpoint resolves the DeployR endpoint for this invocation.
func endpoint() string {
	return cfg.ResolveEndpoint(flagEndpoint)
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(logging.PresentError("", err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
	rootCmd.PersistentFlags().StringVar(&flagEndpoint, "endpoint", "", "DeployR server endpoint (default from $"+config.EnvEndpoint+", config or "+config.DefaultEndpoint+")")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: "+strings.Join([]string{"trace", "debug", "info", "warn", "error"}, ", "))
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}
