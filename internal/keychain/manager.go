// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe keychain operations for dataio.
// It keeps every secret the CLI needs between runs: the DeployR username and
// password used for basic authentication, the serialized login state and the
// DSN of the database that example outputs are exported to.
//
// macOS uses the native security command when available; other platforms go
// through github.com/99designs/keyring with native backends only (Keychain,
// Windows Credential Manager, Secret Service, KWallet or pass).
package keychain

import (
	"errors"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// Global keychain manager instance
var (
	globalManager *Manager
	mu            sync.Mutex
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("keychain: item not found")

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "dataio"

// Keys used for storing secrets in the OS keychain.
const (
	KeyUsername  = "deployr_username"
	KeyPassword  = "deployr_password"
	KeyAuthState = "auth_state"
	KeyExportDSN = "export_dsn"
)

// store is the minimal secret store a Manager needs.
type store interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu    sync.RWMutex
	store store
}

// NewManager creates a manager over the native OS secret store.
func NewManager() (*Manager, error) {
	if runtime.GOOS == "darwin" {
		if backend, err := newSecurityBackend(); err == nil {
			return &Manager{store: backend}, nil
		}
	}
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return NewManagerWithRing(ring), nil
}

// NewManagerWithRing wraps an already opened keyring, such as
// keyring.NewArrayKeyring in tests.
func NewManagerWithRing(ring keyring.Keyring) *Manager {
	return &Manager{store: ringStore{ring: ring}}
}

// GetManager returns the global keychain manager instance.
// If initialization fails, it will retry on subsequent calls.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()
	if globalManager != nil {
		return globalManager, nil
	}
	m, err := NewManager()
	if err != nil {
		return nil, err
	}
	globalManager = m
	return globalManager, nil
}

// SetManager replaces the global manager. Passing nil resets it so the
// next GetManager opens the OS store again.
func SetManager(m *Manager) {
	mu.Lock()
	defer mu.Unlock()
	globalManager = m
}

// openRing opens the OS keyring using native platform backends only.
func openRing() (keyring.Keyring, error) {
	var allowed []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowed = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowed = []keyring.BackendType{keyring.WinCredBackend}
	case "linux", "freebsd", "openbsd":
		allowed = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil, errors.New("secure storage not supported on " + runtime.GOOS)
	}

	cfg := keyring.Config{
		ServiceName:             ServiceName,
		AllowedBackends:         allowed,
		PassPrefix:              ServiceName,
		WinCredPrefix:           ServiceName,
		KWalletAppID:            ServiceName,
		KWalletFolder:           ServiceName,
		LibSecretCollectionName: ServiceName,
	}
	ring, err := keyring.Open(cfg)
	if err != nil {
		if runtime.GOOS == "darwin" {
			return nil, errors.New("macOS Keychain unavailable. Install 'pass': brew install pass gnupg && gpg --generate-key && pass init <gpg-key-id>")
		}
		return nil, err
	}
	return ring, nil
}

// ringStore adapts keyring.Keyring to store.
type ringStore struct {
	ring keyring.Keyring
}

func (r ringStore) Set(key, value string) error {
	return r.ring.Set(keyring.Item{Key: key, Data: []byte(value)})
}

func (r ringStore) Get(key string) (string, error) {
	it, err := r.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(it.Data), nil
}

func (r ringStore) Delete(key string) error {
	err := r.ring.Remove(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (m *Manager) get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, err := m.store.Get(key)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(v) == "" {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Manager) set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Set(key, value)
}

func (m *Manager) remove(keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		_ = m.store.Delete(k)
	}
}

// SaveCredentials stores the DeployR basic-auth credentials.
func (m *Manager) SaveCredentials(username, password string) error {
	if err := m.set(KeyUsername, username); err != nil {
		return err
	}
	return m.set(KeyPassword, password)
}

// LoadCredentials returns the stored DeployR credentials. ErrNotFound is
// returned when either is missing.
func (m *Manager) LoadCredentials() (username, password string, err error) {
	if username, err = m.get(KeyUsername); err != nil {
		return "", "", err
	}
	if password, err = m.get(KeyPassword); err != nil {
		return "", "", err
	}
	return username, password, nil
}

// ClearAuth removes credentials and login state.
func (m *Manager) ClearAuth() error {
	m.remove(KeyUsername, KeyPassword, KeyAuthState)
	return nil
}

// SaveAuthState stores serialized auth state.
func (m *Manager) SaveAuthState(data []byte) error {
	return m.set(KeyAuthState, string(data))
}

// LoadAuthState returns serialized auth state; a missing entry yields
// ErrNotFound.
func (m *Manager) LoadAuthState() ([]byte, error) {
	v, err := m.get(KeyAuthState)
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

// ClearAuthState removes the stored auth state.
func (m *Manager) ClearAuthState() error {
	m.remove(KeyAuthState)
	return nil
}

// SaveExportDSN stores the export database DSN.
func (m *Manager) SaveExportDSN(dsn string) error {
	return m.set(KeyExportDSN, dsn)
}

// LoadExportDSN returns the export database DSN.
func (m *Manager) LoadExportDSN() (string, error) {
	return m.get(KeyExportDSN)
}

// ClearExport removes the export DSN.
func (m *Manager) ClearExport() error {
	m.remove(KeyExportDSN)
	return nil
}

// ClearAll removes every secret dataio stores.
func (m *Manager) ClearAll() error {
	m.remove(KeyUsername, KeyPassword, KeyAuthState, KeyExportDSN)
	return nil
}
