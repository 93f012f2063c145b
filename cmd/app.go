// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"

	"github.com/pterm/pterm"

	"lodgeportal/cli/internal/auth"
	"lodgeportal/cli/internal/authz"
	"lodgeportal/cli/internal/backend"
	"lodgeportal/cli/internal/config"
	"lodgeportal/cli/internal/keychain"
	"lodgeportal/cli/internal/logging"
	"lodgeportal/cli/internal/manifest"
	"lodgeportal/cli/internal/storage"
	boltstore "lodgeportal/cli/internal/storage/bbolt"
	"lodgeportal/cli/internal/storage/memory"
	redisstore "lodgeportal/cli/internal/storage/redis"
	"lodgeportal/cli/internal/task"
	"lodgeportal/cli/internal/terminal"
	"lodgeportal/cli/internal/tokenstore"
)

// app is everything a command needs, built once per invocation.
type app struct {
	cfg    config.Config
	logger *pterm.Logger
	prompt *terminal.Prompter

	tokens   *tokenstore.Store
	api      backend.API
	session  *auth.Session
	flow     *auth.Flow
	recovery *auth.Recovery
	account  *auth.Account
	guard    *authz.Guard

	closers []io.Closer
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	durable, err := keychain.NewManager(cfg.KeyringBackends)
	if err != nil {
		return nil, fmt.Errorf("open keychain: %w", err)
	}
	scoped, closer, err := openSessionTier(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, prompt: terminal.New()}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}
	a.tokens = tokenstore.New(durable, scoped)

	m := manifest.GetEndpoints(ctx, cfg.APIBaseURL, manifest.Options{
		PublicKeyPEM: cfg.ManifestPublicKey,
		Logger:       logger,
	})
	a.api = backend.New(cfg.APIBaseURL, m.HTTP, backend.Options{
		Timeout:   cfg.RequestTimeout,
		UserAgent: "lodge/" + Version,
		Logger:    logger,
	})
	a.wire()
	return a, nil
}

// wire builds the auth core over a.tokens and a.api.
func (a *app) wire() {
	a.session = auth.NewSession(a.api, a.tokens, auth.Options{Logger: a.logger})
	a.flow = auth.NewFlow(a.session, a.api, auth.FlowOptions{
		Logger:       a.logger,
		ResendWindow: a.cfg.ResendWindow,
		OnLogout: func() {
			a.logger.Debug("signed out; next step is lodge login")
		},
	})
	a.recovery = auth.NewRecovery(a.api, a.logger)
	a.account = auth.NewAccount(a.session, a.api)
	a.guard = authz.NewGuard(a.session)
}

// restore runs the cold-start session restore as a scoped task. If ctx ends first (the
// user pressed Ctrl-C) the scope is closed and the late result is dropped.
func (a *app) restore(ctx context.Context) (auth.State, error) {
	scope := task.New(ctx, nil, a.logger)
	defer scope.Close()

	done := make(chan auth.State, 1)
	task.Go(scope, func(ctx context.Context) (auth.State, error) {
		return a.session.Initialize(ctx), nil
	}, func(st auth.State, _ error) {
		done <- st
	})

	select {
	case st := <-done:
		if err := ctx.Err(); err != nil {
			return auth.State{}, err
		}
		return st, nil
	case <-ctx.Done():
		return auth.State{}, ctx.Err()
	}
}

// Close releases the session tier.
func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func loadConfig() (config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

func newLogger(cfg config.Config) *pterm.Logger {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return logging.New(os.Stderr, level)
}

// openSessionTier opens the store holding session-only refresh tokens.
func openSessionTier(ctx context.Context, cfg config.Config, logger *pterm.Logger) (storage.Store, io.Closer, error) {
	switch cfg.SessionStore {
	case config.SessionStoreMemory:
		return memory.New(), nil, nil
	case config.SessionStoreRedis:
		s, err := redisstore.Dial(ctx, cfg.RedisAddr, redisPrefix(), cfg.SessionTTL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to session store: %w", err)
		}
		return s, s, nil
	default:
		s, ephemeral, err := boltstore.OpenRuntime()
		if err != nil {
			return nil, nil, fmt.Errorf("open session store: %w", err)
		}
		if !ephemeral {
			logger.Warn("XDG_RUNTIME_DIR is not set; session-only sign-ins will survive until 'lodge logout'")
		}
		return s, s, nil
	}
}

// redisPrefix namespaces session keys per OS account, since one server may serve many.
func redisPrefix() string {
	name := "default"
	if u, err := user.Current(); err == nil && u.Username != "" {
		name = u.Username
	}
	return "lodge:session:" + name
}
