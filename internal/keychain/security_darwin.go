// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build darwin

package keychain

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// securityBackend stores secrets with the macOS security command. Each key
// becomes a generic password item with account ServiceName.
type securityBackend struct{}

func newSecurityBackend() (*securityBackend, error) {
	if _, err := exec.LookPath("security"); err != nil {
		return nil, fmt.Errorf("security command not found: %w", err)
	}
	return &securityBackend{}, nil
}

func run(args ...string) (string, string, error) {
	cmd := exec.Command("security", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func notFound(stderr string) bool {
	return strings.Contains(stderr, "could not be found")
}

func (s *securityBackend) Set(key, value string) error {
	_ = s.Delete(key)
	_, stderr, err := run("add-generic-password", "-a", ServiceName, "-s", key, "-w", value, "-U")
	if err != nil {
		log.Debug().Str("key", key).Str("stderr", stderr).Msg("keychain set failed")
		return fmt.Errorf("failed to store '%s' in keychain: %s: %w", key, strings.TrimSpace(stderr), err)
	}
	return nil
}

func (s *securityBackend) Get(key string) (string, error) {
	stdout, stderr, err := run("find-generic-password", "-a", ServiceName, "-s", key, "-w")
	if err != nil {
		if notFound(stderr) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to retrieve from keychain: %s: %w", strings.TrimSpace(stderr), err)
	}
	log.Debug().Str("key", key).Int("len", len(stdout)).Msg("keychain get")
	return strings.TrimSpace(stdout), nil
}

func (s *securityBackend) Delete(key string) error {
	_, stderr, err := run("delete-generic-password", "-a", ServiceName, "-s", key)
	if err != nil && !notFound(stderr) {
		return fmt.Errorf("failed to delete from keychain: %s: %w", strings.TrimSpace(stderr), err)
	}
	return nil
}
