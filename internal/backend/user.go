// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"net/http"
)

// GetProfile calls GET users/me with the bearer token.
func (h *HTTP) GetProfile(ctx context.Context, accessToken string) (*User, error) {
	var u User
	if err := h.do(ctx, http.MethodGet, h.endpoints.Me, accessToken, nil, &u); err != nil {
		return nil, err
	}
	if u.ID == "" && u.Username == "" {
		return nil, &Error{Kind: KindDecode, Status: http.StatusOK, Detail: "empty profile"}
	}
	return &u, nil
}

// Register creates a new account. No authentication is attached.
func (h *HTTP) Register(ctx context.Context, r Registration) error {
	return h.do(ctx, http.MethodPost, h.endpoints.Register, "", r, nil)
}

// ChangePassword changes the signed-in user's password.
func (h *HTTP) ChangePassword(ctx context.Context, accessToken, oldPassword, newPassword string) error {
	body := map[string]string{"old_password": oldPassword, "new_password": newPassword}
	return h.do(ctx, http.MethodPost, h.endpoints.ChangePassword, accessToken, body, nil)
}
