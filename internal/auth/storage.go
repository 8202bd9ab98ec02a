// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"dataio/cli/internal/keychain"
)

// State represents persisted authentication state for the current user.
type State struct {
	LoggedIn    bool      `json:"logged_in"`
	Account     string    `json:"account"`
	DisplayName string    `json:"display_name,omitempty"`
	Endpoint    string    `json:"endpoint,omitempty"`
	VerifiedAt  time.Time `json:"verified_at,omitempty"`
}

// Load reads the auth state from the keychain. Missing state yields zero value.
func Load() (State, error) {
	var s State
	km, err := keychain.GetManager()
	if err != nil {
		return s, err
	}
	data, err := km.LoadAuthState()
	if errors.Is(err, keychain.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		log.Debug().Err(err).Msg("auth state load failed")
		return s, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, err
	}
	return s, nil
}

// Save writes the auth state to the keychain.
func Save(s State) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	km, err := keychain.GetManager()
	if err != nil {
		return err
	}
	return km.SaveAuthState(b)
}

// Clear removes the auth state from the keychain.
func Clear() error {
	km, err := keychain.GetManager()
	if err != nil {
		return err
	}
	return km.ClearAuthState()
}
