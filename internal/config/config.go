// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; secrets go to OS keychain.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"dataio/cli/internal/manifest"
	"dataio/cli/internal/xdg"

	"github.com/BurntSushi/toml"
)

// DefaultEndpoint is used when no endpoint is configured anywhere.
const DefaultEndpoint = "http://localhost:8000/deployr"

// EnvEndpoint overrides the configured endpoint.
const EnvEndpoint = "DEPLOYR_ENDPOINT"

// Config holds non-sensitive CLI settings.
type Config struct {
	Endpoint    string                 `toml:"endpoint"`
	LogLevel    string                 `toml:"log_level"`
	DownloadDir string                 `toml:"download_dir"`
	Format      string                 `toml:"format"`
	Export      ExportConfig           `toml:"export"`
	Calls       manifest.HTTPEndpoints `toml:"calls"`
}

// ExportConfig holds settings for writing retrieved data to a database.
// The DSN itself is a secret and lives in the keychain or environment.
type ExportConfig struct {
	TablePrefix string `toml:"table_prefix"`
}

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		Endpoint: DefaultEndpoint,
		LogLevel: "info",
		Format:   "table",
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads configuration; missing file returns defaults.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Defaults(), err
	}
	return LoadFile(p)
}

// LoadFile reads configuration from p. Fields absent from the file keep
// their default values; a missing file yields the defaults.
func LoadFile(p string) (Config, error) {
	c := Defaults()
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if _, err := toml.Decode(string(data), &c); err != nil {
		return Defaults(), err
	}
	return c, nil
}

// Save writes configuration to the default path.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	return SaveFile(p, c)
}

// SaveFile writes configuration to p with 0600 permissions.
func SaveFile(p string, c Config) error {
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ResolveEndpoint applies flag > environment > file > default precedence.
func (c Config) ResolveEndpoint(flag string) string {
	if v := strings.TrimSpace(flag); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv(EnvEndpoint)); v != "" {
		return v
	}
	if v := strings.TrimSpace(c.Endpoint); v != "" {
		return v
	}
	return DefaultEndpoint
}

// Manifest returns the DeployR call table with this config's overrides applied.
func (c Config) Manifest() *manifest.Manifest {
	return manifest.Default().WithOverrides(c.Calls)
}
