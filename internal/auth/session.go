// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"sync"

	"github.com/pterm/pterm"
	"github.com/thejerf/abtime"

	"lodgeportal/cli/internal/backend"
	apperr "lodgeportal/cli/internal/errors"
	"lodgeportal/cli/internal/logging"
	"lodgeportal/cli/internal/tokenstore"
)

// Refresher mints a new access token from a refresh token. backend.API implements it;
// a nil Refresher in Options means the session's API is used.
type Refresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (newAccess, newRefresh string, err error)
}

// Options configure a Session.
type Options struct {
	Logger    *pterm.Logger
	Clock     abtime.AbstractTime
	Refresher Refresher
}

// Session is the single source of truth for who is signed in. Every transition goes
// through it and is announced to subscribers after the lock is released.
type Session struct {
	mu    sync.Mutex
	state State
	// gen increments on every identity transition; a cold-start restore only clears
	// tokens if nothing else happened while it was in flight.
	gen uint64

	observers map[int]func(State)
	nextObs   int

	api       backend.API
	refresher Refresher
	tokens    TokenStore
	clock     abtime.AbstractTime
	logger    *pterm.Logger
}

// NewSession returns an anonymous session.
func NewSession(api backend.API, tokens TokenStore, opts Options) *Session {
	s := &Session{
		api:       api,
		refresher: opts.Refresher,
		tokens:    tokens,
		clock:     opts.Clock,
		logger:    opts.Logger,
		observers: map[int]func(State){},
	}
	if s.refresher == nil {
		s.refresher = api
	}
	if s.clock == nil {
		s.clock = abtime.NewRealTime()
	}
	if s.logger == nil {
		s.logger = logging.Nop()
	}
	return s
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() State {
	st := s.state
	if st.Principal != nil {
		p := *st.Principal
		p.Offices = append([]string(nil), p.Offices...)
		st.Principal = &p
	}
	return st
}

// Principal returns the authenticated principal, or nil.
func (s *Session) Principal() *Principal {
	return s.State().Principal
}

// Subscribe registers fn to receive every new state. The returned func unsubscribes.
func (s *Session) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// commitLocked replaces the state and notifies observers. The caller holds s.mu;
// commitLocked releases it before calling observers.
func (s *Session) commitLocked(next State, identity bool) {
	if identity {
		s.gen++
	}
	s.state = next
	snap := s.snapshot()
	obs := make([]func(State), 0, len(s.observers))
	for _, fn := range s.observers {
		obs = append(obs, fn)
	}
	s.mu.Unlock()

	for _, fn := range obs {
		fn(snap)
	}
}

// SetAuthenticated stores the tokens in the tier chosen by persistent and marks the
// principal as signed in. If the tokens cannot be stored the state is unchanged.
func (s *Session) SetAuthenticated(p Principal, pair tokenstore.Pair, persistent bool) error {
	if err := s.tokens.Save(pair, persistent); err != nil {
		return apperr.Wrap(apperr.Unknown, "Could not store your session on this device.", err)
	}
	s.mu.Lock()
	s.commitLocked(State{Principal: &p, Authenticated: true}, true)
	s.logger.Debug("session authenticated", s.logger.Args("user", p.Username, "persistent", persistent))
	return nil
}

// SetPendingTwoFactor records a login waiting for its second factor. No token is written.
func (s *Session) SetPendingTwoFactor(principalID backend.ID) {
	s.mu.Lock()
	s.commitLocked(State{PendingTwoFactor: true, PendingPrincipalID: principalID}, true)
}

// ClearPending abandons a pending second-factor login. Other states are left alone.
func (s *Session) ClearPending() {
	s.mu.Lock()
	if !s.state.PendingTwoFactor {
		s.mu.Unlock()
		return
	}
	s.commitLocked(State{}, true)
}

// Clear signs out locally: the state becomes anonymous and every token tier is wiped.
// It is safe to call in any state. A storage failure is returned after the state is cleared.
func (s *Session) Clear() error {
	err := s.tokens.Clear()
	if err != nil {
		s.logger.Warn("could not remove stored tokens", s.logger.Args("error", logging.Mask(err.Error())))
	}
	s.mu.Lock()
	s.commitLocked(State{}, true)
	return err
}

func (s *Session) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Initialize restores a stored session at process start. Without tokens it returns at
// once, without network traffic. An expired access token (or only a refresh token) is
// refreshed first, then the profile is fetched. Any failure is an expected cold-start
// condition: tokens are cleared, the state stays anonymous, and nothing is returned.
// If another transition happened while the restore was in flight, or ctx was canceled,
// a failed restore leaves state and tokens alone; a successful one overwrites the state.
func (s *Session) Initialize(ctx context.Context) State {
	gen := s.generation()

	p, err := s.restore(ctx)
	if err != nil {
		s.logger.Debug("session restore failed", s.logger.Args("error", logging.Mask(err.Error())))
		s.mu.Lock()
		// an abandoned restore says nothing about the stored tokens
		if s.gen != gen || ctx.Err() != nil {
			defer s.mu.Unlock()
			return s.snapshot()
		}
		if cerr := s.tokens.Clear(); cerr != nil {
			s.logger.Warn("could not remove stored tokens", s.logger.Args("error", logging.Mask(cerr.Error())))
		}
		s.commitLocked(State{}, true)
		return s.State()
	}
	if p == nil {
		return s.State()
	}

	s.mu.Lock()
	s.commitLocked(State{Principal: p, Authenticated: true}, true)
	s.logger.Debug("session restored", s.logger.Args("user", p.Username))
	return s.State()
}

// restore returns (nil, nil) when no tokens are stored.
func (s *Session) restore(ctx context.Context) (*Principal, error) {
	access, err := s.tokens.LoadAccessToken()
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.LoadRefreshToken()
	if err != nil {
		return nil, err
	}
	if access == "" && refresh == "" {
		return nil, nil
	}

	refreshed := false
	if access == "" || tokenExpired(access, s.clock.Now()) {
		if access, err = s.refresh(ctx, refresh); err != nil {
			return nil, err
		}
		refreshed = true
	}

	u, err := s.api.GetProfile(ctx, access)
	if backend.KindOf(err) == backend.KindUnauthorized && !refreshed && refresh != "" {
		if access, err = s.refresh(ctx, refresh); err != nil {
			return nil, err
		}
		u, err = s.api.GetProfile(ctx, access)
	}
	if err != nil {
		return nil, err
	}
	p := principalFromUser(u)
	return &p, nil
}

func (s *Session) refresh(ctx context.Context, refresh string) (string, error) {
	if refresh == "" {
		return "", apperr.New(apperr.NotAuthenticated, msgExpired)
	}
	access, rotated, err := s.refresher.RefreshToken(ctx, refresh)
	if err != nil {
		return "", err
	}
	if err := s.tokens.UpdateAccessToken(access, rotated); err != nil {
		return "", err
	}
	s.logger.Debug("access token refreshed", s.logger.Args("token", logging.Fingerprint(access)))
	return access, nil
}

// Authorized runs fn with the current access token. If the portal answers 401 and a
// refresh token is stored, the access token is refreshed once and fn retried. When the
// session cannot be renewed it is cleared and a NotAuthenticated error returned.
func (s *Session) Authorized(ctx context.Context, fn func(ctx context.Context, accessToken string) error) error {
	if s.State().Status() != Authenticated {
		return apperr.New(apperr.NotAuthenticated, "You are not signed in. Run 'lodge login' first.")
	}
	access, err := s.tokens.LoadAccessToken()
	if err != nil {
		return apperr.Wrap(apperr.Unknown, "Could not read your session from this device.", err)
	}
	refresh, err := s.tokens.LoadRefreshToken()
	if err != nil {
		return apperr.Wrap(apperr.Unknown, "Could not read your session from this device.", err)
	}

	if access == "" || tokenExpired(access, s.clock.Now()) {
		if access, err = s.refresh(ctx, refresh); err != nil {
			return s.expired(err)
		}
		return fn(ctx, access)
	}

	err = fn(ctx, access)
	if backend.KindOf(err) != backend.KindUnauthorized || refresh == "" {
		return err
	}
	if access, err = s.refresh(ctx, refresh); err != nil {
		return s.expired(err)
	}
	return fn(ctx, access)
}

func (s *Session) expired(cause error) error {
	if mapped, ok := commonError(cause); ok && apperr.KindOf(mapped) == apperr.Connection {
		return mapped
	}
	_ = s.Clear()
	return apperr.Wrap(apperr.NotAuthenticated, msgExpired, cause)
}

// RefreshProfile re-reads the principal, for example after 2FA was enabled.
func (s *Session) RefreshProfile(ctx context.Context) error {
	var u *backend.User
	err := s.Authorized(ctx, func(ctx context.Context, token string) error {
		var err error
		u, err = s.api.GetProfile(ctx, token)
		return err
	})
	if err != nil {
		if mapped, ok := commonError(err); ok {
			return mapped
		}
		return apperr.Wrap(apperr.Unknown, msgUnexpected, err)
	}

	p := principalFromUser(u)
	s.mu.Lock()
	if !s.state.Authenticated {
		s.mu.Unlock()
		return apperr.New(apperr.NotAuthenticated, "You are not signed in.")
	}
	s.commitLocked(State{Principal: &p, Authenticated: true}, false)
	return nil
}
