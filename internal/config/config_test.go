package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	t.Setenv("LODGE_API_URL", "")
	t.Setenv("LODGE_SESSION_STORE", "")

	c, err := LoadFile(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), c)
}

func TestLoadFileParsesYAML(t *testing.T) {
	t.Setenv("LODGE_API_URL", "")
	t.Setenv("LODGE_SESSION_STORE", "")

	p := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`api_base_url: https://portal.example.org/api/
log_level: debug
request_timeout: 5s
resend_window: 45s
session_store: redis
redis_addr: cache:6379
`)
	require.NoError(t, os.WriteFile(p, body, 0o600))

	c, err := LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "https://portal.example.org/api", c.APIBaseURL)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, 5*time.Second, c.RequestTimeout)
	assert.Equal(t, 45*time.Second, c.ResendWindow)
	assert.Equal(t, SessionStoreRedis, c.SessionStore)
	assert.Equal(t, 12*time.Hour, c.SessionTTL)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LODGE_API_URL", "https://lodge.test")
	t.Setenv("LODGE_SESSION_STORE", "MEMORY")

	c, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "https://lodge.test", c.APIBaseURL)
	assert.Equal(t, SessionStoreMemory, c.SessionStore)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "relative url", mutate: func(c *Config) { c.APIBaseURL = "/api" }, wantErr: true},
		{name: "ftp url", mutate: func(c *Config) { c.APIBaseURL = "ftp://portal" }, wantErr: true},
		{name: "unknown store", mutate: func(c *Config) { c.SessionStore = "cookie" }, wantErr: true},
		{name: "redis without addr", mutate: func(c *Config) { c.SessionStore = SessionStoreRedis; c.RedisAddr = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Defaults()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveFileRoundTrip(t *testing.T) {
	t.Setenv("LODGE_API_URL", "")
	t.Setenv("LODGE_SESSION_STORE", "")

	p := filepath.Join(t.TempDir(), "config.yaml")
	c := Defaults()
	c.APIBaseURL = "https://portal.example.org"
	c.KeyringBackends = []string{"file"}
	require.NoError(t, SaveFile(p, c))

	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestLoadStoredFileIgnoresEnv(t *testing.T) {
	t.Setenv("LODGE_API_URL", "https://override.test")

	p := filepath.Join(t.TempDir(), "config.yaml")
	c := Defaults()
	c.APIBaseURL = "https://portal.example.org"
	require.NoError(t, SaveFile(p, c))

	got, err := LoadStoredFile(p)
	require.NoError(t, err)
	assert.Equal(t, "https://portal.example.org", got.APIBaseURL)

	eff, err := LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "https://override.test", eff.APIBaseURL)
}
