// Package dirs resolves platform-appropriate application directories.
package dirs

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "meetdl"

// AppName returns the canonical application name for directory paths.
func AppName() string {
	return appName
}

// ConfigDir returns the app's configuration directory.
// - Linux: $XDG_CONFIG_HOME/meetdl or ~/.config/meetdl
// - macOS: ~/Library/Application Support/meetdl
// - Windows: %AppData%/meetdl (via os.UserConfigDir)
func ConfigDir() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", AppName()), nil
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName()), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", AppName()), nil
	default:
		cfg, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(cfg, AppName()), nil
	}
}

// DataDir returns the app's data directory, used for the default output
// location.
func DataDir() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", AppName()), nil
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName()), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", AppName()), nil
	default:
		cfg, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(cfg, AppName()), nil
	}
}

// Ensure creates dir if it does not exist.
func Ensure(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// EnsureAll creates the base app directories, best-effort.
func EnsureAll() error {
	var firstErr error
	for _, f := range []func() (string, error){ConfigDir, DataDir} {
		d, err := f()
		if err == nil {
			err = Ensure(d)
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
