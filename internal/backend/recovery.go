package backend

import (
	"context"
	"net/http"
)

// RequestPasswordReset asks the portal to mail a reset link.
func (h *HTTP) RequestPasswordReset(ctx context.Context, email string) error {
	return h.do(ctx, http.MethodPost, h.endpoints.PasswordReset, "", map[string]string{"email": email}, nil)
}

// ConfirmPasswordReset sets a new password using the uid/token pair from the reset link.
func (h *HTTP) ConfirmPasswordReset(ctx context.Context, r PasswordReset) error {
	return h.do(ctx, http.MethodPost, h.endpoints.PasswordResetDone, "", r, nil)
}
