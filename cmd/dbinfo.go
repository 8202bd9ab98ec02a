// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"

	"dataio/cli/internal/dsn"
	"dataio/cli/internal/export"
	"dataio/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// dbinfoCmd displays the export database connection with credentials masked.
var dbinfoCmd = &cobra.Command{
	Use:   "dbinfo",
	Short: "Show the export database connection string",
	Long: `The dbinfo command displays the export database DSN with the username and
password masked, and where it was configured ($` + export.EnvDSN + ` or the OS keychain).`,

	RunE: func(cmd *cobra.Command, args []string) error {
		raw, source, err := export.ResolveDSN("")
		if errors.Is(err, export.ErrNoDSN) {
			pterm.Println("⚠️  No export database configured")
			pterm.Println("   Please run: dataio connect")
			return nil
		}
		if err != nil {
			pterm.Error.Println("Secure storage is not available on this system")
			return err
		}

		title := "Export Database"
		if info, err := dsn.ParseInfo(raw); err == nil {
			title += " (" + string(info.Type) + ")"
		}
		pterm.Println("Using DSN from " + source)
		pterm.Println()
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(title)).
			WithPadding(1).
			Println(logging.Mask(raw))
		pterm.Println()
		pterm.Println("To update this connection, run: dataio connect")
		pterm.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbinfoCmd)
}
