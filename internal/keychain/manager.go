// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain is the durable storage tier for lodge: it keeps secrets in the OS
// credential store so they survive restarts. Manager implements storage.Store, so the
// token store can use it interchangeably with the session-scoped tiers.
//
// On macOS the native `security` command is preferred; elsewhere the keyring library
// opens the configured backends (Secret Service, pass, or an encrypted file).
package keychain

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/99designs/keyring"

	"lodgeportal/cli/internal/storage"
	"lodgeportal/cli/internal/xdg"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "lodge"

// PasswordEnv supplies the passphrase for the encrypted file backend.
const PasswordEnv = "LODGE_KEYRING_PASSWORD"

// Manager provides thread-safe operations on the OS keychain.
type Manager struct {
	mu      sync.RWMutex
	ring    keyring.Keyring
	backend keychainBackend
}

var _ storage.Store = (*Manager)(nil)

// keychainBackend is implemented by native command-line backends.
type keychainBackend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// NewManager opens the OS keychain. backends restricts the keyring backends by name
// (for example "secret-service", "pass", "file"); empty means the platform default.
func NewManager(backends []string) (*Manager, error) {
	if runtime.GOOS == "darwin" && len(backends) == 0 {
		backend, err := newSecurityBackend()
		if err == nil {
			return &Manager{backend: backend}, nil
		}
		// fall through to the keyring library
	}

	ring, err := openRing(backends)
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// NewWithKeyring wraps an already opened keyring.
func NewWithKeyring(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

func openRing(names []string) (keyring.Keyring, error) {
	allowed, err := parseBackends(names)
	if err != nil {
		return nil, err
	}

	cfg := keyring.Config{
		ServiceName:             ServiceName,
		AllowedBackends:         allowed,
		PassPrefix:              ServiceName,
		LibSecretCollectionName: ServiceName,
		KeychainName:            "login",
		WinCredPrefix:           ServiceName,
	}
	if dir, err := xdg.StateDir(); err == nil {
		cfg.FileDir = dir + "/keyring"
	}
	if pw := os.Getenv(PasswordEnv); pw != "" {
		cfg.FilePasswordFunc = keyring.FixedStringPrompt(pw)
	} else {
		cfg.FilePasswordFunc = keyring.TerminalPrompt
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		if runtime.GOOS == "linux" {
			return nil, fmt.Errorf("no usable keyring backend (install a Secret Service provider or set keyring_backends: [file]): %w", err)
		}
		return nil, err
	}
	return ring, nil
}

func parseBackends(names []string) ([]keyring.BackendType, error) {
	if len(names) == 0 {
		switch runtime.GOOS {
		case "darwin":
			return []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}, nil
		case "windows":
			return []keyring.BackendType{keyring.WinCredBackend}, nil
		default:
			return []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}, nil
		}
	}

	known := map[string]keyring.BackendType{
		"keychain":       keyring.KeychainBackend,
		"wincred":        keyring.WinCredBackend,
		"secret-service": keyring.SecretServiceBackend,
		"kwallet":        keyring.KWalletBackend,
		"pass":           keyring.PassBackend,
		"keyctl":         keyring.KeyCtlBackend,
		"file":           keyring.FileBackend,
	}
	out := make([]keyring.BackendType, 0, len(names))
	for _, n := range names {
		b, ok := known[n]
		if !ok {
			return nil, fmt.Errorf("unknown keyring backend %q", n)
		}
		out = append(out, b)
	}
	return out, nil
}

// Get returns the secret stored under key, or storage.ErrNotFound.
// This method is thread-safe.
func (m *Manager) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.backend != nil {
		v, err := m.backend.Get(key)
		if err != nil {
			return "", err
		}
		if v == "" {
			return "", fmt.Errorf("%s: %w", key, storage.ErrNotFound)
		}
		return v, nil
	}

	it, err := m.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("%s: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	if len(it.Data) == 0 {
		return "", fmt.Errorf("%s: %w", key, storage.ErrNotFound)
	}
	return string(it.Data), nil
}

// Set stores value under key. This method is thread-safe.
func (m *Manager) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Set(key, value)
	}
	return m.ring.Set(keyring.Item{
		Key:         key,
		Data:        []byte(value),
		Label:       ServiceName + " " + key,
		Description: "Lodge Portal credential",
	})
}

// Delete removes key; a missing key is not an error. This method is thread-safe.
func (m *Manager) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Delete(key)
	}
	err := m.ring.Remove(key)
	if errors.Is(err, keyring.ErrKeyNotFound) || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
