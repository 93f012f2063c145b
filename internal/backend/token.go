// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"net/http"
	"strings"
)

// tokenResponse accepts the field spellings portals use for token payloads.
type tokenResponse struct {
	Access       string `json:"access"`
	AccessToken  string `json:"access_token"`
	Token        string `json:"token"`
	Refresh      string `json:"refresh"`
	RefreshToken string `json:"refresh_token"`

	User              *User  `json:"user"`
	RequiresTwoFactor bool   `json:"requires_2fa"`
	UserID            ID     `json:"user_id"`
	Detail            string `json:"detail"`
}

func (t *tokenResponse) access() string {
	return firstNonEmpty(t.Access, t.AccessToken, t.Token)
}

func (t *tokenResponse) refresh() string {
	return firstNonEmpty(t.Refresh, t.RefreshToken)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// RefreshToken calls the refresh endpoint. The portal may rotate the refresh token.
func (h *HTTP) RefreshToken(ctx context.Context, refreshToken string) (string, string, error) {
	var out tokenResponse
	err := h.do(ctx, http.MethodPost, h.endpoints.RefreshToken, "", map[string]string{"refresh": refreshToken}, &out)
	if err != nil {
		return "", "", err
	}
	access := out.access()
	if access == "" {
		return "", "", &Error{Kind: KindDecode, Status: http.StatusOK, Detail: "no access token in response"}
	}
	return access, out.refresh(), nil
}
