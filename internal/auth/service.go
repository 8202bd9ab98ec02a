// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"dataio/cli/internal/deployr"
	"dataio/cli/internal/keychain"
	"dataio/cli/internal/manifest"
)

// ErrNotLoggedIn is returned when no credentials are available.
var ErrNotLoggedIn = errors.New("not logged in: run 'dataio login' or set DEPLOYR_USERNAME and DEPLOYR_PASSWORD")

// VerifyFunc performs one authenticated round trip against endpoint and
// returns the server's display name for the user.
type VerifyFunc func(ctx context.Context, endpoint string, creds Credentials) (string, error)

// Service centralizes authentication-related operations against the server
// and local secure storage/state.
type Service struct {
	endpoint string
	verify   VerifyFunc
}

// NewService constructs a Service that verifies credentials with a real
// login followed by release.
func NewService(endpoint string, calls manifest.HTTPEndpoints) *Service {
	return &Service{endpoint: endpoint, verify: deployrVerifier(calls)}
}

// NewServiceWithVerifier is NewService with a custom verification step.
func NewServiceWithVerifier(endpoint string, verify VerifyFunc) *Service {
	return &Service{endpoint: endpoint, verify: verify}
}

func deployrVerifier(calls manifest.HTTPEndpoints) VerifyFunc {
	return func(ctx context.Context, endpoint string, creds Credentials) (string, error) {
		c, err := deployr.New(endpoint, deployr.WithCalls(calls))
		if err != nil {
			return "", err
		}
		defer func() {
			if err := c.Release(context.WithoutCancel(ctx)); err != nil {
				log.Debug().Err(err).Msg("release after verification failed")
			}
		}()
		u, err := c.Login(ctx, deployr.BasicAuth{Username: creds.Username, Password: creds.Password})
		if err != nil {
			return "", err
		}
		if u.DisplayName != "" {
			return u.DisplayName, nil
		}
		return u.Username, nil
	}
}

// Endpoint returns the server the service talks to.
func (s *Service) Endpoint() string { return s.endpoint }

// Login verifies the credentials against the server and, on success,
// stores them in the keychain together with the login state.
func (s *Service) Login(ctx context.Context, username, password string) (State, error) {
	creds := Credentials{Username: username, Password: password}
	display, err := s.verify(ctx, s.endpoint, creds)
	if err != nil {
		return State{}, err
	}
	km, err := keychain.GetManager()
	if err != nil {
		return State{}, err
	}
	if err := km.SaveCredentials(username, password); err != nil {
		return State{}, err
	}
	st := State{
		LoggedIn:    true,
		Account:     username,
		DisplayName: display,
		Endpoint:    s.endpoint,
		VerifiedAt:  time.Now().UTC(),
	}
	if err := Save(st); err != nil {
		return State{}, err
	}
	return st, nil
}

// WhoAmI returns the stored login state. With verify set, the stored
// credentials are replayed against the server first; a rejected login
// clears local state.
func (s *Service) WhoAmI(ctx context.Context, verify bool) (State, error) {
	st, err := Load()
	if err != nil {
		return State{}, err
	}
	if !verify {
		return st, nil
	}
	creds, err := ResolveCredentials()
	if err != nil {
		if errors.Is(err, keychain.ErrNotFound) {
			return State{}, ErrNotLoggedIn
		}
		return State{}, err
	}
	display, err := s.verify(ctx, s.endpoint, creds)
	if err != nil {
		if deployr.IsUnauthorized(err) && creds.Source == "keychain" {
			_ = s.ResetLocalAuth()
		}
		return State{}, err
	}
	st.LoggedIn = true
	st.Account = creds.Username
	st.DisplayName = display
	st.Endpoint = s.endpoint
	st.VerifiedAt = time.Now().UTC()
	if creds.Source == "keychain" {
		_ = Save(st)
	}
	return st, nil
}

// Credentials returns credentials for an authenticated run.
func (s *Service) Credentials() (Credentials, error) {
	creds, err := ResolveCredentials()
	if errors.Is(err, keychain.ErrNotFound) {
		return Credentials{}, ErrNotLoggedIn
	}
	return creds, err
}

// Logout clears stored credentials and state. DeployR sessions are per
// connection, so there is nothing to revoke remotely.
func (s *Service) Logout(ctx context.Context) error {
	return s.ResetLocalAuth()
}

// ResetLocalAuth clears only local credentials/state.
func (s *Service) ResetLocalAuth() error {
	km, err := keychain.GetManager()
	if err != nil {
		return err
	}
	if err := km.ClearAuth(); err != nil {
		return err
	}
	return Clear()
}
