// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"strings"

	"lodgeportal/cli/internal/backend"
	apperr "lodgeportal/cli/internal/errors"
)

// Account groups the account operations. All but Register need a signed-in session.
type Account struct {
	session *Session
	api     backend.API
}

// NewAccount returns Account operations bound to session.
func NewAccount(session *Session, api backend.API) *Account {
	return &Account{session: session, api: api}
}

// Register creates an account. The new member signs in separately afterwards.
func (a *Account) Register(ctx context.Context, r backend.Registration, confirmPassword string) error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	if r.Username == "" || r.Email == "" {
		return apperr.New(apperr.Validation, "Username and email are required.")
	}
	if !emailPattern.MatchString(r.Email) {
		return apperr.New(apperr.Validation, "Please enter a valid email address.")
	}
	if r.Degree != 0 && (r.Degree < int(Apprentice) || r.Degree > int(MasterMason)) {
		return apperr.New(apperr.Validation, "Degree must be 1, 2 or 3.")
	}
	if err := checkNewPassword(r.Password, confirmPassword); err != nil {
		return err
	}

	err := a.api.Register(ctx, r)
	if err == nil {
		return nil
	}
	if mapped, ok := commonError(err); ok {
		return mapped
	}
	gw, _ := backend.AsError(err)
	switch {
	case gw.HasField("password"):
		return apperr.Wrap(apperr.PasswordPolicy, detailOr(err, "The password does not meet the password policy.", "password"), err)
	case gw.Kind == backend.KindBadRequest:
		return apperr.Wrap(apperr.Validation, detailOr(err, "The registration was rejected.", "username", "email", "degree"), err)
	case gw.Kind == backend.KindUnauthorized, gw.Kind == backend.KindForbidden:
		return apperr.Wrap(apperr.NotAuthenticated, "Registration is restricted to lodge administrators.", err)
	default:
		return apperr.Wrap(apperr.Unknown, msgUnexpected, err)
	}
}

// ChangePassword changes the signed-in member's password.
func (a *Account) ChangePassword(ctx context.Context, oldPassword, newPassword, confirmPassword string) error {
	if oldPassword == "" {
		return apperr.New(apperr.Validation, "Please enter your current password.")
	}
	if err := checkNewPassword(newPassword, confirmPassword); err != nil {
		return err
	}

	err := a.session.Authorized(ctx, func(ctx context.Context, token string) error {
		return a.api.ChangePassword(ctx, token, oldPassword, newPassword)
	})
	if err == nil {
		return nil
	}
	if mapped, ok := commonError(err); ok {
		return mapped
	}
	gw, _ := backend.AsError(err)
	switch {
	case gw.HasField("old_password"):
		return apperr.Wrap(apperr.InvalidCredentials, "Your current password is incorrect.", err)
	case gw.HasField("new_password"):
		return apperr.Wrap(apperr.PasswordPolicy, detailOr(err, "The new password does not meet the password policy.", "new_password"), err)
	default:
		return apperr.Wrap(apperr.Unknown, detailOr(err, msgUnexpected), err)
	}
}

// SetupTwoFactor starts enrolment of an authenticator app and returns its provisioning data.
func (a *Account) SetupTwoFactor(ctx context.Context) (*backend.TwoFactorSetup, error) {
	var setup *backend.TwoFactorSetup
	err := a.session.Authorized(ctx, func(ctx context.Context, token string) error {
		var err error
		setup, err = a.api.SetupTwoFactor(ctx, token)
		return err
	})
	if err != nil {
		if mapped, ok := commonError(err); ok {
			return nil, mapped
		}
		return nil, apperr.Wrap(apperr.Unknown, detailOr(err, msgUnexpected), err)
	}
	return setup, nil
}

// ConfirmTwoFactorSetup activates the enrolled app with a code it generated, then
// re-reads the profile so the principal reflects the change.
func (a *Account) ConfirmTwoFactorSetup(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if !codePattern.MatchString(code) {
		return apperr.New(apperr.Validation, "Enter the 6-digit code from your authenticator app.")
	}

	err := a.session.Authorized(ctx, func(ctx context.Context, token string) error {
		return a.api.ConfirmTwoFactorSetup(ctx, token, code)
	})
	if err != nil {
		if mapped, ok := commonError(err); ok {
			return mapped
		}
		if backend.KindOf(err) == backend.KindBadRequest {
			return apperr.Wrap(apperr.TwoFactorInvalid, detailOr(err, "Invalid verification code.", "code"), err)
		}
		return apperr.Wrap(apperr.Unknown, msgUnexpected, err)
	}
	return a.session.RefreshProfile(ctx)
}

// DisableTwoFactor turns the second factor off, then re-reads the profile.
func (a *Account) DisableTwoFactor(ctx context.Context) error {
	err := a.session.Authorized(ctx, func(ctx context.Context, token string) error {
		return a.api.DisableTwoFactor(ctx, token)
	})
	if err != nil {
		if mapped, ok := commonError(err); ok {
			return mapped
		}
		return apperr.Wrap(apperr.Unknown, detailOr(err, msgUnexpected), err)
	}
	return a.session.RefreshProfile(ctx)
}
