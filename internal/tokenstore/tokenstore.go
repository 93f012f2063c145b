// Package tokenstore persists the access/refresh token pair across two storage tiers.
//
// A "remember me" login writes both tokens to the durable tier. Otherwise the refresh
// token goes to the session-scoped tier and the access token stays in process memory,
// sealed in a memguard enclave. Reads never fail for a missing key: absence is "".
package tokenstore

import (
	"errors"
	"sync"

	"github.com/awnumar/memguard"

	"lodgeportal/cli/internal/storage"
)

// Storage keys.
const (
	KeyAccessToken  = "token"
	KeyRefreshToken = "refresh_token"
	KeyLastUsername = "last_username"
)

// Pair is an access/refresh token pair. Both are opaque bearer strings.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Store is the token store. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	durable storage.Store
	session storage.Store
	access  *memguard.Enclave
}

// New returns a Store over a durable and a session-scoped tier.
func New(durable, session storage.Store) *Store {
	return &Store{durable: durable, session: session}
}

// Save stores the pair in the tier chosen by persistent.
func (s *Store) Save(p Pair, persistent bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if persistent {
		s.access = nil
		if err := s.durable.Set(KeyAccessToken, p.AccessToken); err != nil {
			return err
		}
		var err error
		if p.RefreshToken == "" {
			err = s.durable.Delete(KeyRefreshToken)
		} else {
			err = s.durable.Set(KeyRefreshToken, p.RefreshToken)
		}
		if err != nil {
			return err
		}
		// the two copies are mutually exclusive
		return s.session.Delete(KeyRefreshToken)
	}

	s.access = seal(p.AccessToken)
	if p.RefreshToken == "" {
		return s.session.Delete(KeyRefreshToken)
	}
	return s.session.Set(KeyRefreshToken, p.RefreshToken)
}

// UpdateAccessToken stores a freshly minted access token (and a rotated refresh token,
// if the portal issued one) in the tier the current session already uses.
func (s *Store) UpdateAccessToken(access, rotatedRefresh string) error {
	persistent, err := s.Persistent()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if persistent {
		if err := s.durable.Set(KeyAccessToken, access); err != nil {
			return err
		}
		if rotatedRefresh != "" {
			return s.durable.Set(KeyRefreshToken, rotatedRefresh)
		}
		return nil
	}

	s.access = seal(access)
	if rotatedRefresh != "" {
		return s.session.Set(KeyRefreshToken, rotatedRefresh)
	}
	return nil
}

// LoadAccessToken returns the access token from memory, then the durable tier. When the
// session tier holds a refresh token the session is not a remembered one, so a durable
// access token left over from an earlier login is never returned.
func (s *Store) LoadAccessToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, err := open(s.access); err != nil || v != "" {
		return v, err
	}
	if v, err := get(s.session, KeyRefreshToken); err != nil || v != "" {
		return "", err
	}
	return get(s.durable, KeyAccessToken)
}

// LoadRefreshToken returns the refresh token from the session tier, then the durable tier.
func (s *Store) LoadRefreshToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, err := get(s.session, KeyRefreshToken); err != nil || v != "" {
		return v, err
	}
	return get(s.durable, KeyRefreshToken)
}

// Persistent reports whether the current tokens live in the durable tier.
func (s *Store) Persistent() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, err := get(s.session, KeyRefreshToken); err != nil || v != "" {
		return false, err
	}
	if s.access != nil {
		return false, nil
	}
	for _, k := range []string{KeyRefreshToken, KeyAccessToken} {
		if v, err := get(s.durable, k); err != nil || v != "" {
			return v != "", err
		}
	}
	return false, nil
}

// Clear removes the tokens from memory and both tiers, whichever tier was used.
// The remembered username is kept.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = nil
	return errors.Join(
		s.durable.Delete(KeyAccessToken),
		s.durable.Delete(KeyRefreshToken),
		s.session.Delete(KeyRefreshToken),
	)
}

// RememberUsername stores the last used username in the durable tier. It is a
// convenience value, not a credential.
func (s *Store) RememberUsername(username string) error {
	if username == "" {
		return nil
	}
	return s.durable.Set(KeyLastUsername, username)
}

// LastUsername returns the remembered username, or "".
func (s *Store) LastUsername() (string, error) {
	return get(s.durable, KeyLastUsername)
}

// ForgetUsername removes the remembered username.
func (s *Store) ForgetUsername() error {
	return s.durable.Delete(KeyLastUsername)
}

func get(st storage.Store, key string) (string, error) {
	v, err := st.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	return v, err
}

func seal(v string) *memguard.Enclave {
	if v == "" {
		return nil
	}
	// NewEnclave wipes its argument
	return memguard.NewEnclave([]byte(v))
}

func open(e *memguard.Enclave) (string, error) {
	if e == nil {
		return "", nil
	}
	lb, err := e.Open()
	if err != nil {
		return "", err
	}
	defer lb.Destroy()
	return string(lb.Bytes()), nil
}
