// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages. Every failure produced by the authentication flows is one
// of these kinds, so the command layer can present a message without inspecting transport
// errors or wire formats.
//
// The package supports wrapping underlying errors while maintaining error kind information,
// making it easier to handle different types of failures appropriately.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Validation indicates blank or malformed input detected before any request was issued.
	Validation Kind = "validation"
	// InvalidCredentials indicates the backend rejected the username/password pair (401).
	InvalidCredentials Kind = "invalid_credentials"
	// AccountDisabled indicates the account exists but may not sign in (403).
	AccountDisabled Kind = "account_disabled"
	// TwoFactorInvalid indicates the second-factor code was rejected.
	TwoFactorInvalid Kind = "two_factor_invalid"
	// TokenInvalid indicates an expired or invalid password-reset token.
	TokenInvalid Kind = "token_invalid"
	// PasswordPolicy indicates the backend rejected a new password.
	PasswordPolicy Kind = "password_policy"
	// Connection indicates a network failure, timeout or unavailable backend.
	Connection Kind = "connection"
	// InvalidState indicates an operation that is not valid in the current flow state.
	InvalidState Kind = "invalid_state"
	// InProgress indicates a submission is already running for the same flow.
	InProgress Kind = "in_progress"
	// NotAuthenticated indicates the operation needs a signed-in principal.
	NotAuthenticated Kind = "not_authenticated"
	// Unknown is used for backend failures that fit no other category.
	Unknown Kind = "unknown"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *E
	return stderrors.As(err, &e) && e.Kind == kind
}

// UserMessage returns the message suitable for display. Errors that are not *E get a
// generic message so raw transport text never reaches the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *E
	if stderrors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Something went wrong. Please try again."
}
