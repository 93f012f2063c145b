package cmd

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lodgeportal/cli/internal/auth"
	"lodgeportal/cli/internal/backend"
	"lodgeportal/cli/internal/config"
	"lodgeportal/cli/internal/logging"
	"lodgeportal/cli/internal/manifest"
	"lodgeportal/cli/internal/storage/memory"
	"lodgeportal/cli/internal/terminal"
	"lodgeportal/cli/internal/tokenstore"
)

func newTestApp(t *testing.T, portal http.Handler) *app {
	t.Helper()
	srv := httptest.NewServer(portal)
	t.Cleanup(srv.Close)

	a := &app{
		cfg:    config.Defaults(),
		logger: logging.Nop(),
		prompt: terminal.NewWithIO(strings.NewReader(""), io.Discard),
	}
	a.tokens = tokenstore.New(memory.New(), memory.New())
	a.api = backend.New(srv.URL, manifest.Defaults().HTTP, backend.Options{Logger: a.logger})
	a.wire()
	return a
}

func TestRestoreWithoutTokens(t *testing.T) {
	var hits atomic.Int32
	a := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))

	st, err := a.restore(context.Background())

	require.NoError(t, err)
	assert.Equal(t, auth.Anonymous, st.Status())
	assert.Zero(t, hits.Load())
}

func TestRestoreAbandonedOnCancel(t *testing.T) {
	started := make(chan struct{})
	a := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	require.NoError(t, a.tokens.Save(tokenstore.Pair{AccessToken: "acc", RefreshToken: "ref"}, true))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := a.restore(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, auth.Anonymous, a.session.State().Status())
	access, _ := a.tokens.LoadAccessToken()
	assert.Equal(t, "acc", access, "an interrupted restore keeps the stored session")
}

func TestOpenSessionTier(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.SessionStore = config.SessionStoreMemory

		s, closer, err := openSessionTier(context.Background(), cfg, logging.Nop())
		require.NoError(t, err)
		assert.Nil(t, closer)
		assert.IsType(t, &memory.Store{}, s)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := config.Defaults()
		cfg.SessionStore = config.SessionStoreRedis
		cfg.RedisAddr = mr.Addr()

		s, closer, err := openSessionTier(context.Background(), cfg, logging.Nop())
		require.NoError(t, err)
		defer closer.Close()

		require.NoError(t, s.Set("refresh_token", "ref"))
		assert.True(t, mr.Exists(redisPrefix()+":refresh_token"))
	})

	t.Run("file", func(t *testing.T) {
		t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

		s, closer, err := openSessionTier(context.Background(), config.Defaults(), logging.Nop())
		require.NoError(t, err)
		defer closer.Close()

		require.NoError(t, s.Set("refresh_token", "ref"))
		v, err := s.Get("refresh_token")
		require.NoError(t, err)
		assert.Equal(t, "ref", v)
	})
}

func TestSetConfigValue(t *testing.T) {
	tests := []struct {
		key, value string
		check      func(t *testing.T, c config.Config)
		wantErr    bool
	}{
		{key: "api-base-url", value: "https://portal.example.org/api/", check: func(t *testing.T, c config.Config) {
			assert.Equal(t, "https://portal.example.org/api", c.APIBaseURL)
		}},
		{key: "resend_window", value: "45s", check: func(t *testing.T, c config.Config) {
			assert.Equal(t, 45*time.Second, c.ResendWindow)
		}},
		{key: "keyring_backends", value: "secret-service, file,", check: func(t *testing.T, c config.Config) {
			assert.Equal(t, []string{"secret-service", "file"}, c.KeyringBackends)
		}},
		{key: "session_store", value: "Redis", check: func(t *testing.T, c config.Config) {
			assert.Equal(t, config.SessionStoreRedis, c.SessionStore)
		}},
		{key: "request_timeout", value: "-1s", wantErr: true},
		{key: "colour", value: "blue", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			c := config.Defaults()
			err := setConfigValue(&c, tt.key, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}
