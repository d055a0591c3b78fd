package app

import (
	"os"
	"path/filepath"
)

// ConfigDir returns ~/.config/recall/ on all platforms.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "recall"), nil
}

// EnsureConfigDir creates the config directory and default config.yaml if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return os.WriteFile(configFile, []byte(defaultConfig), 0600)
	}
	return nil
}

const defaultConfig = `# recall configuration
# Run: recall --help

# Optional: override the SQLite database location.
# Can also be set via RECALL_DB_PATH or --db-path.
# db_path: ~/.config/recall/recall.db

# Scheduling strategy: fsrs (default) or sm2.
# strategy: fsrs

# Target recall probability at the moment an item comes due.
# desired_retention: 0.9

# Reviews per calendar day before due dates get shifted to a neighbor day.
# daily_capacity: 200
`
