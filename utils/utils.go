package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// Name of the config file looked up in the home directory
const ConfigFileName = ".boostmeter-overlay.yaml"

// GetConfigPath returns `explicit` when set, the default config file in the
// user's home directory otherwise.
func GetConfigPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not resolve home directory: %w", err)
	}
	return filepath.Join(home, ConfigFileName), nil
}
