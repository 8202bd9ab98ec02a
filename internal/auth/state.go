// Package auth manages DeployR credentials and login state for the CLI.
// DeployR uses basic username/password authentication per connection, so
// "logged in" here means a verified credential pair is stored in the OS
// keychain and can be replayed by every authenticated example.
package auth

import (
	"context"
	"os"
	"strings"

	"dataio/cli/internal/keychain"
)

// Environment variables that override stored credentials.
const (
	EnvUsername = "DEPLOYR_USERNAME"
	EnvPassword = "DEPLOYR_PASSWORD"
)

// Credentials is a username/password pair and where it came from.
type Credentials struct {
	Username string
	Password string
	// Source is "env" or "keychain".
	Source string
}

// IsLoggedIn reports whether the user is considered logged in.
func IsLoggedIn(ctx context.Context) (bool, error) {
	st, err := Load()
	if err != nil {
		return false, err
	}
	return st.LoggedIn, nil
}

// ResolveCredentials returns credentials from the environment when both
// variables are set, otherwise from the keychain.
func ResolveCredentials() (Credentials, error) {
	u := strings.TrimSpace(os.Getenv(EnvUsername))
	p := os.Getenv(EnvPassword)
	if u != "" && p != "" {
		return Credentials{Username: u, Password: p, Source: "env"}, nil
	}
	km, err := keychain.GetManager()
	if err != nil {
		return Credentials{}, err
	}
	u, p, err = km.LoadCredentials()
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Username: u, Password: p, Source: "keychain"}, nil
}
