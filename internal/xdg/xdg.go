// Package xdg provides helpers to resolve XDG Base Directory paths for lodge.
// It implements the XDG Base Directory specification for determining appropriate
// locations for configuration files, state data and per-login runtime files on
// Unix-like systems.
//
// The package handles fallback to traditional locations when XDG environment
// variables are not set and ensures private permissions for every directory it creates.
package xdg

import (
	"os"
	"path/filepath"
)

// AppName is the directory name used under each XDG base directory.
const AppName = "lodge"

// ConfigDir returns the XDG config directory for lodge.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.config/lodge when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	return ensure("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the XDG state directory for lodge.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.local/state/lodge when XDG_STATE_HOME is unset.
func StateDir() (string, error) {
	return ensure("XDG_STATE_HOME", ".local", "state")
}

// RuntimeDir returns the XDG runtime directory for lodge. The OS removes
// XDG_RUNTIME_DIR when the user's login session ends, which makes it the home of
// session-scoped secrets. When unset, the state directory is used instead and ok is false.
func RuntimeDir() (dir string, ok bool, err error) {
	base := os.Getenv("XDG_RUNTIME_DIR")
	if base == "" {
		dir, err = StateDir()
		return dir, false, err
	}
	dir = filepath.Join(base, AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", false, err
	}
	return dir, true, nil
}

func ensure(env string, fallback ...string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(append([]string{home}, fallback...)...)
	}
	dir := filepath.Join(base, AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
