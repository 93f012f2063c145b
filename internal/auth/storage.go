// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import "lodgeportal/cli/internal/tokenstore"

// TokenStore is the persistence the session needs. *tokenstore.Store implements it.
type TokenStore interface {
	Save(p tokenstore.Pair, persistent bool) error
	UpdateAccessToken(access, rotatedRefresh string) error
	LoadAccessToken() (string, error)
	LoadRefreshToken() (string, error)
	Clear() error
	RememberUsername(username string) error
	LastUsername() (string, error)
}

var _ TokenStore = (*tokenstore.Store)(nil)
