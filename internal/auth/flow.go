// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/pterm/pterm"
	"github.com/thejerf/abtime"

	"lodgeportal/cli/internal/backend"
	apperr "lodgeportal/cli/internal/errors"
	"lodgeportal/cli/internal/logging"
	"lodgeportal/cli/internal/tokenstore"
)

// FlowState is the credential flow's state.
type FlowState int

const (
	Idle FlowState = iota
	Submitting
	TwoFactorRequired
	SubmittingTwoFactor
	SignedIn
	Failed
)

func (s FlowState) String() string {
	switch s {
	case Submitting:
		return "submitting"
	case TwoFactorRequired:
		return "two_factor_required"
	case SubmittingTwoFactor:
		return "submitting_two_factor"
	case SignedIn:
		return "authenticated"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

var codePattern = regexp.MustCompile(`^\d{6}$`)

// FlowOptions configure a Flow.
type FlowOptions struct {
	Logger       *pterm.Logger
	Clock        abtime.AbstractTime
	ResendWindow time.Duration
	// OnLogout is called after every Logout, for navigation back to the sign-in screen.
	OnLogout func()
}

// Flow drives sign-in: credentials, an optional second factor, then the session.
// Submissions are serialized: a call made while another is running fails with
// InProgress and has no side effects.
type Flow struct {
	mu      sync.Mutex
	state   FlowState
	lastErr error
	// attempt increments on Cancel/Logout; results of older attempts are dropped.
	attempt    uint64
	pendingID  backend.ID
	persistent bool
	username   string

	session   *Session
	api       backend.API
	countdown *Countdown
	logger    *pterm.Logger
	onLogout  func()
}

// NewFlow returns an idle flow over session.
func NewFlow(session *Session, api backend.API, opts FlowOptions) *Flow {
	f := &Flow{
		session:   session,
		api:       api,
		countdown: NewCountdown(opts.Clock, opts.ResendWindow),
		logger:    opts.Logger,
		onLogout:  opts.OnLogout,
	}
	if f.logger == nil {
		f.logger = logging.Nop()
	}
	return f
}

// State returns the flow state.
func (f *Flow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// LastError returns the error of the last failed operation, or nil.
func (f *Flow) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Countdown exposes the resend-code timer.
func (f *Flow) Countdown() *Countdown { return f.countdown }

// PendingUsername returns the username of the login waiting for its second factor.
func (f *Flow) PendingUsername() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.username
}

func (f *Flow) busyLocked() bool {
	return f.state == Submitting || f.state == SubmittingTwoFactor
}

// fail records err and moves to state. The session is left alone.
func (f *Flow) fail(state FlowState, err error) error {
	f.mu.Lock()
	f.state = state
	f.lastErr = err
	f.mu.Unlock()
	return err
}

// Login submits credentials. Blank fields are rejected before any request is made.
// When the portal asks for a second factor, the flow moves to TwoFactorRequired and no
// token is stored yet.
func (f *Flow) Login(ctx context.Context, username, password string, remember bool) error {
	username = strings.TrimSpace(username)

	f.mu.Lock()
	if f.busyLocked() {
		f.mu.Unlock()
		return apperr.New(apperr.InProgress, "A sign-in is already in progress.")
	}
	// a new login supersedes a pending second-factor challenge
	wasPending := f.state == TwoFactorRequired
	f.pendingID = ""
	f.username = ""
	var invalid error
	if username == "" || strings.TrimSpace(password) == "" {
		invalid = apperr.New(apperr.Validation, "Username and password are required.")
		f.state = Failed
		f.lastErr = invalid
	} else {
		f.state = Submitting
		f.lastErr = nil
	}
	attempt := f.attempt
	f.mu.Unlock()

	if wasPending {
		f.countdown.Stop()
		f.session.ClearPending()
	}
	if invalid != nil {
		return invalid
	}

	f.logger.Debug("signing in", f.logger.Args("user", username, "remember", remember))
	res, err := f.api.Login(ctx, username, password)
	if err != nil {
		return f.settle(attempt, Failed, mapLoginError(err))
	}

	if res.RequiresTwoFactor {
		if !f.current(attempt) {
			return errCanceled
		}
		f.session.SetPendingTwoFactor(res.PendingUserID)
		f.mu.Lock()
		f.state = TwoFactorRequired
		f.pendingID = res.PendingUserID
		f.persistent = remember
		f.username = username
		f.mu.Unlock()
		f.countdown.Start()
		f.logger.Debug("second factor required", f.logger.Args("user_id", string(res.PendingUserID)))
		return nil
	}

	return f.complete(ctx, attempt, res, username, remember, Failed)
}

// VerifyTwoFactor submits the one-time code. It is only valid in TwoFactorRequired; a
// malformed code is rejected locally and every failure leaves the flow in
// TwoFactorRequired so the user can retry without re-entering credentials.
func (f *Flow) VerifyTwoFactor(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)

	f.mu.Lock()
	if f.busyLocked() {
		f.mu.Unlock()
		return apperr.New(apperr.InProgress, "A verification is already in progress.")
	}
	if f.state != TwoFactorRequired {
		f.mu.Unlock()
		return apperr.New(apperr.InvalidState, "No verification is pending. Please sign in first.")
	}
	if !codePattern.MatchString(code) {
		f.mu.Unlock()
		return f.fail(TwoFactorRequired, apperr.New(apperr.Validation, "Enter the 6-digit code from your authenticator app."))
	}
	f.state = SubmittingTwoFactor
	f.lastErr = nil
	attempt, pending, remember, username := f.attempt, f.pendingID, f.persistent, f.username
	f.mu.Unlock()

	res, err := f.api.VerifyTwoFactor(ctx, code, pending)
	if err != nil {
		mapped := mapTwoFactorError(err)
		next := TwoFactorRequired
		// the pending principal no longer exists; retrying cannot succeed
		if apperr.Is(mapped, apperr.InvalidState) {
			next = Failed
			f.session.ClearPending()
		}
		return f.settle(attempt, next, mapped)
	}
	if err := f.complete(ctx, attempt, res, username, remember, TwoFactorRequired); err != nil {
		return err
	}
	f.countdown.Stop()
	return nil
}

// complete finishes a successful credential exchange: profile (when not embedded),
// tokens, session, remembered username.
func (f *Flow) complete(ctx context.Context, attempt uint64, res *backend.LoginResult, username string, remember bool, onFail FlowState) error {
	user := res.User
	if user == nil {
		var err error
		if user, err = f.api.GetProfile(ctx, res.AccessToken); err != nil {
			mapped, ok := commonError(err)
			if !ok {
				mapped = apperr.Wrap(apperr.Unknown, msgUnexpected, err)
			}
			return f.settle(attempt, onFail, mapped)
		}
	}

	if !f.current(attempt) {
		return errCanceled
	}
	p := principalFromUser(user)
	pair := tokenstore.Pair{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken}
	if err := f.session.SetAuthenticated(p, pair, remember); err != nil {
		return f.settle(attempt, onFail, err)
	}

	if username == "" {
		username = p.Username
	}
	if err := f.session.tokens.RememberUsername(username); err != nil {
		f.logger.Debug("could not remember username", f.logger.Args("error", err.Error()))
	}

	f.mu.Lock()
	f.state = SignedIn
	f.pendingID = ""
	f.username = ""
	f.mu.Unlock()
	return nil
}

var errCanceled = apperr.New(apperr.InvalidState, "The sign-in was canceled.")

func (f *Flow) current(attempt uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempt == attempt
}

// settle records a failure unless the attempt was canceled meanwhile.
func (f *Flow) settle(attempt uint64, state FlowState, err error) error {
	if !f.current(attempt) {
		return errCanceled
	}
	f.logger.Debug("sign-in step failed", f.logger.Args("kind", string(apperr.KindOf(err)), "error", logging.Mask(err.Error())))
	return f.fail(state, err)
}

// ResendCode re-arms the resend countdown. It is valid in TwoFactorRequired once the
// previous countdown has expired. Authenticator codes rotate on their own, so no request
// is made and the previous code stays valid.
func (f *Flow) ResendCode() error {
	f.mu.Lock()
	state := f.state
	f.mu.Unlock()

	if state != TwoFactorRequired {
		return apperr.New(apperr.InvalidState, "No verification is pending.")
	}
	if left := f.countdown.Remaining(); left > 0 {
		secs := int(math.Ceil(left.Seconds()))
		return apperr.New(apperr.InvalidState, fmt.Sprintf("You can request a new code in %ds.", secs))
	}
	f.countdown.Start()
	return nil
}

// Cancel abandons the current attempt. A pending second factor is discarded and any
// in-flight result is ignored when it arrives.
func (f *Flow) Cancel() {
	f.mu.Lock()
	f.attempt++
	f.state = Idle
	f.lastErr = nil
	f.pendingID = ""
	f.username = ""
	f.mu.Unlock()

	f.countdown.Stop()
	f.session.ClearPending()
}

// Logout signs out from any state. The portal is asked to revoke the tokens when it
// supports that (best effort), local state and tokens are always cleared, then OnLogout
// runs. Calling it repeatedly is harmless.
func (f *Flow) Logout(ctx context.Context) error {
	f.mu.Lock()
	f.attempt++
	f.state = Idle
	f.lastErr = nil
	f.pendingID = ""
	f.username = ""
	f.mu.Unlock()
	f.countdown.Stop()

	access, _ := f.session.tokens.LoadAccessToken()
	refresh, _ := f.session.tokens.LoadRefreshToken()
	if access != "" || refresh != "" {
		if err := f.api.Logout(ctx, access, refresh); err != nil {
			f.logger.Debug("remote logout failed", f.logger.Args("error", logging.Mask(err.Error())))
		}
	}

	err := f.session.Clear()
	if f.onLogout != nil {
		f.onLogout()
	}
	if err != nil {
		return apperr.Wrap(apperr.Unknown, "Signed out, but stored tokens could not be removed from this device.", err)
	}
	return nil
}
