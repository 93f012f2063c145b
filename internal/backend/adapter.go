// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend is the gateway to the portal's REST API. It issues the network calls the
// auth core needs and reports failures as *Error values, a typed union the flows switch on
// instead of inspecting response bodies.
package backend

import "context"

// API defines portal operations the CLI depends on.
// Implementations may call the real REST endpoints or provide fakes for tests.
type API interface {
	// Login exchanges credentials for tokens, or reports that a second factor is required.
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	// VerifyTwoFactor completes a pending login with a one-time code.
	VerifyTwoFactor(ctx context.Context, code string, pendingUserID ID) (*LoginResult, error)
	// GetProfile returns the user the access token belongs to.
	GetProfile(ctx context.Context, accessToken string) (*User, error)
	// RefreshToken exchanges a refresh token for a new access token. newRefresh is empty
	// unless the portal rotates refresh tokens.
	RefreshToken(ctx context.Context, refreshToken string) (newAccess, newRefresh string, err error)
	// Logout invalidates tokens server-side. Portals without a logout endpoint return nil.
	Logout(ctx context.Context, accessToken, refreshToken string) error

	Register(ctx context.Context, r Registration) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, r PasswordReset) error
	ChangePassword(ctx context.Context, accessToken, oldPassword, newPassword string) error

	SetupTwoFactor(ctx context.Context, accessToken string) (*TwoFactorSetup, error)
	ConfirmTwoFactorSetup(ctx context.Context, accessToken, code string) error
	DisableTwoFactor(ctx context.Context, accessToken string) error
}
