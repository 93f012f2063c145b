package auth

import (
	"context"
	"errors"

	"lodgeportal/cli/internal/backend"
	apperr "lodgeportal/cli/internal/errors"
	"lodgeportal/cli/internal/httperrors"
)

const (
	msgServer     = "The portal is having trouble right now. Please try again later."
	msgUnexpected = "The portal sent an unexpected response. Please try again."
	msgExpired    = "Your session has expired. Please sign in again."
)

// commonError maps gateway failures every operation treats alike. ok is false when the
// caller must decide (bad_request, unauthorized, forbidden, not_found).
func commonError(err error) (error, bool) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return connectionError(err), true
	}
	switch backend.KindOf(err) {
	case backend.KindTransport:
		return connectionError(err), true
	case backend.KindServer:
		return apperr.Wrap(apperr.Unknown, msgServer, err), true
	case backend.KindDecode:
		return apperr.Wrap(apperr.Unknown, msgUnexpected, err), true
	case "":
		var typed *apperr.E
		if errors.As(err, &typed) {
			return err, true
		}
		return apperr.Wrap(apperr.Unknown, msgUnexpected, err), true
	}
	return nil, false
}

func connectionError(err error) error {
	return apperr.Wrap(apperr.Connection, httperrors.Message(httperrors.Classify(err)), err)
}

// detailOr returns the portal's message for a rejected request, or fallback.
func detailOr(err error, fallback string, fields ...string) string {
	e, ok := backend.AsError(err)
	if !ok {
		return fallback
	}
	for _, f := range fields {
		if m := e.FieldMessage(f); m != "" {
			return m
		}
	}
	if m := e.FieldMessage("non_field_errors"); m != "" {
		return m
	}
	if e.Detail != "" {
		return e.Detail
	}
	return fallback
}

// mapLoginError maps a credential exchange failure.
func mapLoginError(err error) error {
	if mapped, ok := commonError(err); ok {
		return mapped
	}
	switch backend.KindOf(err) {
	case backend.KindUnauthorized:
		return apperr.Wrap(apperr.InvalidCredentials, "Invalid username or password.", err)
	case backend.KindForbidden:
		return apperr.Wrap(apperr.AccountDisabled, "This account is disabled. Contact the lodge secretary.", err)
	case backend.KindBadRequest:
		return apperr.Wrap(apperr.Validation, "Username and password are required.", err)
	default:
		return apperr.Wrap(apperr.Unknown, msgUnexpected, err)
	}
}

// mapTwoFactorError maps a code verification failure.
func mapTwoFactorError(err error) error {
	if mapped, ok := commonError(err); ok {
		return mapped
	}
	switch backend.KindOf(err) {
	case backend.KindForbidden:
		return apperr.Wrap(apperr.AccountDisabled, "This account is disabled. Contact the lodge secretary.", err)
	case backend.KindNotFound:
		return apperr.Wrap(apperr.InvalidState, "The sign-in attempt is no longer valid. Please sign in again.", err)
	default:
		return apperr.Wrap(apperr.TwoFactorInvalid, "Invalid or expired verification code.", err)
	}
}
