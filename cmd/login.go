// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"dataio/cli/internal/auth"
	"dataio/cli/internal/httperrors"
	"dataio/cli/internal/terminal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var loginUsername string

// loginCmd stores DeployR credentials after verifying them with a real
// login against the server.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Verify and store DeployR credentials",
	Long: `The login command prompts for a DeployR username and password, verifies them by
logging in to the server (and releasing the connection again), then stores them
in the OS keychain. Authenticated examples replay the stored credentials.

DEPLOYR_USERNAME and DEPLOYR_PASSWORD, when both set, take precedence over the
keychain at run time.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		reader := bufio.NewReader(os.Stdin)
		username := strings.TrimSpace(loginUsername)
		if username == "" {
			username, _ = terminal.Line(reader, os.Stdout, "DeployR username: ")
		}
		if username == "" {
			return errors.New("username is required")
		}

		password, err := terminal.Password(os.Stdin, reader, os.Stdout, "DeployR password: ")
		if err != nil {
			return err
		}

		svc := auth.NewService(endpoint(), cfg.Manifest().HTTP)
		stop := startInlineSpinner(os.Stdout, "Verifying credentials", spinnerFrames, 120*time.Millisecond)
		st, err := svc.Login(ctx, username, password)
		stop()
		if err != nil {
			return httperrors.FormatNetworkError(err, "logging in", endpoint())
		}

		name := st.Account
		if st.DisplayName != "" && st.DisplayName != st.Account {
			name = fmt.Sprintf("%s (%s)", st.DisplayName, st.Account)
		}
		pterm.Success.Printf("Logged in to %s as %s\n", st.Endpoint, name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "DeployR username (prompted when empty)")
}
