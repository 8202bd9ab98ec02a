// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"dataio/cli/internal/auth"
	"dataio/cli/internal/keychain"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var logoutAll bool

// logoutCmd represents the logout command for clearing authentication state.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove saved DeployR credentials",
	Long: `The logout command removes the stored DeployR username, password and login state
from the OS keychain. With --all the export database DSN is removed as well.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		svc := auth.NewService(endpoint(), cfg.Manifest().HTTP)
		if err := svc.Logout(cmd.Context()); err != nil {
			return err
		}
		if logoutAll {
			km, err := keychain.GetManager()
			if err != nil {
				return err
			}
			if err := km.ClearAll(); err != nil {
				return err
			}
			pterm.Success.Println("All credentials and the export connection have been removed")
			return nil
		}
		pterm.Success.Println("DeployR credentials have been removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
	logoutCmd.Flags().BoolVar(&logoutAll, "all", false, "Also remove the export database DSN")
}
