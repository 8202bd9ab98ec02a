// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataio/cli/internal/deployr"
	"dataio/cli/internal/keychain"
)

func useTestKeychain(t *testing.T) *keychain.Manager {
	t.Helper()
	m := keychain.NewManagerWithRing(keyring.NewArrayKeyring(nil))
	keychain.SetManager(m)
	t.Cleanup(func() { keychain.SetManager(nil) })
	t.Setenv(EnvUsername, "")
	t.Setenv(EnvPassword, "")
	return m
}

func acceptOnly(password string) VerifyFunc {
	return func(_ context.Context, _ string, c Credentials) (string, error) {
		if c.Password != password {
			return "", &deployr.CallError{Call: "/r/user/login", HTTPStatus: http.StatusUnauthorized, Message: "Bad credentials"}
		}
		return "Test User", nil
	}
}

func TestLoginStoresCredentials(t *testing.T) {
	km := useTestKeychain(t)
	svc := NewServiceWithVerifier("http://localhost:8000/deployr", acceptOnly("changeme"))

	st, err := svc.Login(context.Background(), "testuser", "changeme")
	require.NoError(t, err)
	assert.True(t, st.LoggedIn)
	assert.Equal(t, "Test User", st.DisplayName)

	u, p, err := km.LoadCredentials()
	require.NoError(t, err)
	assert.Equal(t, "testuser", u)
	assert.Equal(t, "changeme", p)

	loggedIn, err := IsLoggedIn(context.Background())
	require.NoError(t, err)
	assert.True(t, loggedIn)
}

func TestLoginRejectedStoresNothing(t *testing.T) {
	km := useTestKeychain(t)
	svc := NewServiceWithVerifier("http://localhost:8000/deployr", acceptOnly("changeme"))

	_, err := svc.Login(context.Background(), "testuser", "wrong")
	assert.True(t, deployr.IsUnauthorized(err))

	_, _, err = km.LoadCredentials()
	assert.ErrorIs(t, err, keychain.ErrNotFound)
}

func TestWhoAmIVerifyClearsRejectedKeychainCredentials(t *testing.T) {
	km := useTestKeychain(t)
	require.NoError(t, km.SaveCredentials("testuser", "stale"))
	require.NoError(t, Save(State{LoggedIn: true, Account: "testuser"}))

	svc := NewServiceWithVerifier("http://localhost:8000/deployr", acceptOnly("changeme"))
	_, err := svc.WhoAmI(context.Background(), true)
	assert.Error(t, err)

	st, err := Load()
	require.NoError(t, err)
	assert.False(t, st.LoggedIn)
}

func TestWhoAmIWithoutVerify(t *testing.T) {
	useTestKeychain(t)
	require.NoError(t, Save(State{LoggedIn: true, Account: "testuser"}))

	svc := NewServiceWithVerifier("http://localhost:8000/deployr", func(context.Context, string, Credentials) (string, error) {
		return "", errors.New("must not be called")
	})
	st, err := svc.WhoAmI(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "testuser", st.Account)
}

func TestCredentialsPrecedence(t *testing.T) {
	km := useTestKeychain(t)
	svc := NewServiceWithVerifier("http://localhost:8000/deployr", acceptOnly("x"))

	_, err := svc.Credentials()
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	require.NoError(t, km.SaveCredentials("stored", "pw"))
	c, err := svc.Credentials()
	require.NoError(t, err)
	assert.Equal(t, "stored", c.Username)
	assert.Equal(t, "keychain", c.Source)

	t.Setenv(EnvUsername, "envuser")
	t.Setenv(EnvPassword, "envpw")
	c, err = svc.Credentials()
	require.NoError(t, err)
	assert.Equal(t, "envuser", c.Username)
	assert.Equal(t, "env", c.Source)
}

func TestLogoutClears(t *testing.T) {
	km := useTestKeychain(t)
	svc := NewServiceWithVerifier("http://localhost:8000/deployr", acceptOnly("changeme"))
	_, err := svc.Login(context.Background(), "testuser", "changeme")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background()))
	_, _, err = km.LoadCredentials()
	assert.ErrorIs(t, err, keychain.ErrNotFound)
	loggedIn, err := IsLoggedIn(context.Background())
	require.NoError(t, err)
	assert.False(t, loggedIn)
}
