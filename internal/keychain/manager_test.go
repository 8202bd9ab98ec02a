// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package keychain

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManagerWithRing(keyring.NewArrayKeyring(nil))
}

func TestCredentials(t *testing.T) {
	m := newTestManager()

	_, _, err := m.LoadCredentials()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.SaveCredentials("testuser", "changeme"))
	u, p, err := m.LoadCredentials()
	require.NoError(t, err)
	assert.Equal(t, "testuser", u)
	assert.Equal(t, "changeme", p)

	require.NoError(t, m.ClearAuth())
	_, _, err = m.LoadCredentials()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExportDSN(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.SaveExportDSN("postgres://u:p@localhost/db"))

	dsn, err := m.LoadExportDSN()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@localhost/db", dsn)

	require.NoError(t, m.SaveCredentials("testuser", "changeme"))
	require.NoError(t, m.ClearAuth())
	dsn, err = m.LoadExportDSN()
	require.NoError(t, err, "clearing auth keeps the export DSN")
	assert.NotEmpty(t, dsn)

	require.NoError(t, m.ClearAll())
	_, err = m.LoadExportDSN()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEmptyValueIsMissing(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.SaveAuthState([]byte("  ")))
	_, err := m.LoadAuthState()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetManager(t *testing.T) {
	m := newTestManager()
	SetManager(m)
	t.Cleanup(func() { SetManager(nil) })

	got, err := GetManager()
	require.NoError(t, err)
	assert.Same(t, m, got)
}
