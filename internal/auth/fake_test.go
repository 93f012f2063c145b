package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lodgeportal/cli/internal/backend"
	"lodgeportal/cli/internal/storage/memory"
	"lodgeportal/cli/internal/tokenstore"
)

var errUnexpectedCall = errors.New("unexpected call")

// fakeAPI is a scriptable backend.API that counts calls.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	login        func(username, password string) (*backend.LoginResult, error)
	verify       func(code string, id backend.ID) (*backend.LoginResult, error)
	profile      func(token string) (*backend.User, error)
	refresh      func(refresh string) (string, string, error)
	logout       func(access, refresh string) error
	register     func(r backend.Registration) error
	resetRequest func(email string) error
	resetConfirm func(r backend.PasswordReset) error
	changePass   func(token, old, newPass string) error
	setup2FA     func(token string) (*backend.TwoFactorSetup, error)
	confirm2FA   func(token, code string) error
	disable2FA   func(token string) error
}

var _ backend.API = (*fakeAPI)(nil)

func newFakeAPI() *fakeAPI { return &fakeAPI{calls: map[string]int{}} }

func (f *fakeAPI) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAPI) Login(_ context.Context, username, password string) (*backend.LoginResult, error) {
	f.hit("login")
	if f.login == nil {
		return nil, errUnexpectedCall
	}
	return f.login(username, password)
}

func (f *fakeAPI) VerifyTwoFactor(_ context.Context, code string, id backend.ID) (*backend.LoginResult, error) {
	f.hit("verify")
	if f.verify == nil {
		return nil, errUnexpectedCall
	}
	return f.verify(code, id)
}

func (f *fakeAPI) GetProfile(_ context.Context, token string) (*backend.User, error) {
	f.hit("profile")
	if f.profile == nil {
		return nil, errUnexpectedCall
	}
	return f.profile(token)
}

func (f *fakeAPI) RefreshToken(_ context.Context, refresh string) (string, string, error) {
	f.hit("refresh")
	if f.refresh == nil {
		return "", "", errUnexpectedCall
	}
	return f.refresh(refresh)
}

func (f *fakeAPI) Logout(_ context.Context, access, refresh string) error {
	f.hit("logout")
	if f.logout == nil {
		return nil
	}
	return f.logout(access, refresh)
}

func (f *fakeAPI) Register(_ context.Context, r backend.Registration) error {
	f.hit("register")
	if f.register == nil {
		return errUnexpectedCall
	}
	return f.register(r)
}

func (f *fakeAPI) RequestPasswordReset(_ context.Context, email string) error {
	f.hit("reset_request")
	if f.resetRequest == nil {
		return errUnexpectedCall
	}
	return f.resetRequest(email)
}

func (f *fakeAPI) ConfirmPasswordReset(_ context.Context, r backend.PasswordReset) error {
	f.hit("reset_confirm")
	if f.resetConfirm == nil {
		return errUnexpectedCall
	}
	return f.resetConfirm(r)
}

func (f *fakeAPI) ChangePassword(_ context.Context, token, old, newPass string) error {
	f.hit("change_password")
	if f.changePass == nil {
		return errUnexpectedCall
	}
	return f.changePass(token, old, newPass)
}

func (f *fakeAPI) SetupTwoFactor(_ context.Context, token string) (*backend.TwoFactorSetup, error) {
	f.hit("setup_2fa")
	if f.setup2FA == nil {
		return nil, errUnexpectedCall
	}
	return f.setup2FA(token)
}

func (f *fakeAPI) ConfirmTwoFactorSetup(_ context.Context, token, code string) error {
	f.hit("confirm_2fa")
	if f.confirm2FA == nil {
		return errUnexpectedCall
	}
	return f.confirm2FA(token, code)
}

func (f *fakeAPI) DisableTwoFactor(_ context.Context, token string) error {
	f.hit("disable_2fa")
	if f.disable2FA == nil {
		return errUnexpectedCall
	}
	return f.disable2FA(token)
}

// harness wires a session over in-memory tiers.
type harness struct {
	api     *fakeAPI
	tokens  *tokenstore.Store
	durable *memory.Store
	scoped  *memory.Store
	session *Session
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{api: newFakeAPI(), durable: memory.New(), scoped: memory.New()}
	h.tokens = tokenstore.New(h.durable, h.scoped)
	h.session = NewSession(h.api, h.tokens, Options{})
	return h
}

// signIn puts the harness session into the authenticated state with the given tokens.
func (h *harness) signIn(t *testing.T, access, refresh string, persistent bool) {
	t.Helper()
	p := Principal{ID: "7", Username: "hiram", Role: RoleMember, Degree: MasterMason}
	if err := h.session.SetAuthenticated(p, tokenstore.Pair{AccessToken: access, RefreshToken: refresh}, persistent); err != nil {
		t.Fatalf("SetAuthenticated failed: %v", err)
	}
}

func gatewayError(kind backend.ErrorKind, status int) *backend.Error {
	return &backend.Error{Kind: kind, Status: status}
}

func hiram() *backend.User {
	return &backend.User{ID: "7", Username: "hiram", Email: "hiram@example.org", Degree: 3, FirstName: "Hiram", LastName: "Abiff"}
}

func jwtWithExpiry(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "7",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-signing-key"))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return tok
}
