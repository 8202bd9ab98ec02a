package cmd

import (
	"errors"

	"dataio/cli/internal/auth"
	"dataio/cli/internal/httperrors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var whoamiVerify bool

// whoamiCmd shows the stored login, optionally re-verified against the server.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show current authenticated account",
	Long: `The whoami command shows which DeployR account the CLI will use for authenticated
examples. With --verify the stored credentials are replayed against the server;
credentials the server rejects are removed from the keychain.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		svc := auth.NewService(endpoint(), cfg.Manifest().HTTP)
		st, err := svc.WhoAmI(cmd.Context(), whoamiVerify)
		if errors.Is(err, auth.ErrNotLoggedIn) || (err == nil && !st.LoggedIn) {
			pterm.Println("🔒 You're not logged in yet!")
			pterm.Println("   Run 'dataio login' to get started.")
			return nil
		}
		if err != nil {
			return httperrors.FormatNetworkError(err, "verifying credentials", endpoint())
		}

		pterm.Printf("👤 Current user: %s\n", st.Account)
		if st.DisplayName != "" && st.DisplayName != st.Account {
			pterm.Printf("   Name:     %s\n", st.DisplayName)
		}
		if st.Endpoint != "" {
			pterm.Printf("   Server:   %s\n", st.Endpoint)
		}
		if !st.VerifiedAt.IsZero() {
			pterm.Printf("   Verified: %s\n", st.VerifiedAt.Local().Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
	whoamiCmd.Flags().BoolVar(&whoamiVerify, "verify", false, "Replay stored credentials against the server")
}
