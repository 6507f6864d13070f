// Package storage persists games and result statistics in BadgerDB.
package storage

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
)

const appName = "chessmate"

// baseDataDir returns the per-user directory applications keep data in:
// ~/Library/Application Support on macOS, %APPDATA% on Windows and
// $XDG_DATA_HOME (or ~/.local/share) elsewhere.
func baseDataDir() (string, error) {
	var env string
	var fallback []string

	switch runtime.GOOS {
	case "darwin":
		fallback = []string{"Library", "Application Support"}
	case "windows":
		env, fallback = "APPDATA", []string{"AppData", "Roaming"}
	default:
		env, fallback = "XDG_DATA_HOME", []string{".local", "share"}
	}

	if env != "" {
		if dir := os.Getenv(env); dir != "" {
			return dir, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WithStack(err)
	}
	return filepath.Join(append([]string{home}, fallback...)...), nil
}

// GetDataDir returns the application data directory, creating it if needed.
func GetDataDir() (string, error) {
	base, err := baseDataDir()
	if err != nil {
		return "", err
	}
	return ensureDir(filepath.Join(base, appName))
}

// GetDatabaseDir returns the directory for storing the BadgerDB database.
func GetDatabaseDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return ensureDir(filepath.Join(dataDir, "db"))
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "create %s", dir)
	}
	return dir, nil
}
