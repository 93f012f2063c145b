// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; secrets go to the OS keychain or the
// session-scoped store.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"lodgeportal/cli/internal/xdg"
)

// Session store kinds.
const (
	SessionStoreFile   = "file"
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	APIBaseURL        string        `yaml:"api_base_url"`
	LogLevel          string        `yaml:"log_level"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	ResendWindow      time.Duration `yaml:"resend_window"`
	SessionStore      string        `yaml:"session_store"`
	SessionTTL        time.Duration `yaml:"session_ttl"`
	RedisAddr         string        `yaml:"redis_addr"`
	KeyringBackends   []string      `yaml:"keyring_backends,omitempty"`
	ManifestPublicKey string        `yaml:"manifest_public_key,omitempty"`
}

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		APIBaseURL:     "http://localhost:8000/api",
		LogLevel:       "info",
		RequestTimeout: 10 * time.Second,
		ResendWindow:   30 * time.Second,
		SessionStore:   SessionStoreFile,
		SessionTTL:     12 * time.Hour,
		RedisAddr:      "localhost:6379",
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads configuration from the default path; a missing file returns defaults.
// Environment overrides are applied last.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(p)
}

// LoadFile reads configuration from p. A missing file yields defaults.
func LoadFile(p string) (Config, error) {
	c, err := readFile(p)
	if err != nil {
		return c, err
	}
	c.applyEnv()
	c.fillZero()
	return c, c.Validate()
}

// LoadStoredFile reads p without environment overrides, for editing and saving back.
func LoadStoredFile(p string) (Config, error) {
	c, err := readFile(p)
	c.fillZero()
	return c, err
}

func readFile(p string) (Config, error) {
	c := Defaults()
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse %s: %w", p, err)
	}
	return c, nil
}

// SaveFile writes configuration to p with 0600 permissions.
func SaveFile(p string, c Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_base_url must be an absolute http(s) URL, got %q", c.APIBaseURL)
	}
	switch c.SessionStore {
	case SessionStoreFile, SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("session_store must be one of file, memory, redis; got %q", c.SessionStore)
	}
	if c.SessionStore == SessionStoreRedis && c.RedisAddr == "" {
		return errors.New("redis_addr is required when session_store is redis")
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("LODGE_API_URL")); v != "" {
		c.APIBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("LODGE_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("LODGE_SESSION_STORE")); v != "" {
		c.SessionStore = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("LODGE_REDIS_ADDR")); v != "" {
		c.RedisAddr = v
	}
}

func (c *Config) fillZero() {
	d := Defaults()
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.ResendWindow <= 0 {
		c.ResendWindow = d.ResendWindow
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = d.SessionTTL
	}
	if c.SessionStore == "" {
		c.SessionStore = d.SessionStore
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}
