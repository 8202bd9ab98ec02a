package export

import (
	"errors"
	"os"
	"strings"

	"dataio/cli/internal/keychain"
)

// EnvDSN overrides the export DSN stored in the keychain.
const EnvDSN = "DATAIO_EXPORT_DSN"

// ErrNoDSN is returned when no export database is configured.
var ErrNoDSN = errors.New("no export database configured: run 'dataio connect' or set " + EnvDSN)

// ResolveDSN returns the export DSN and where it came from, applying
// flag > environment > keychain precedence.
func ResolveDSN(flag string) (dsn, source string, err error) {
	if v := strings.TrimSpace(flag); v != "" {
		return v, "flag", nil
	}
	if v := strings.TrimSpace(os.Getenv(EnvDSN)); v != "" {
		return v, "env", nil
	}
	km, err := keychain.GetManager()
	if err != nil {
		return "", "", err
	}
	v, err := km.LoadExportDSN()
	if errors.Is(err, keychain.ErrNotFound) {
		return "", "", ErrNoDSN
	}
	if err != nil {
		return "", "", err
	}
	return v, "keychain", nil
}
