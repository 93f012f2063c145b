package backend

import (
	"context"
	"net/http"
)

// Login posts credentials to the token endpoint.
func (h *HTTP) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body := map[string]string{"username": username, "password": password}
	return h.exchange(ctx, h.endpoints.Login, body)
}

// VerifyTwoFactor posts the one-time code for a pending login.
func (h *HTTP) VerifyTwoFactor(ctx context.Context, code string, pendingUserID ID) (*LoginResult, error) {
	body := map[string]any{"code": code, "user_id": pendingUserID}
	res, err := h.exchange(ctx, h.endpoints.TwoFactorVerify, body)
	if err != nil {
		return nil, err
	}
	if res.RequiresTwoFactor || res.AccessToken == "" {
		return nil, &Error{Kind: KindDecode, Status: http.StatusOK, Detail: "no access token in response"}
	}
	return res, nil
}

func (h *HTTP) exchange(ctx context.Context, path string, body any) (*LoginResult, error) {
	var out tokenResponse
	if err := h.do(ctx, http.MethodPost, path, "", body, &out); err != nil {
		return nil, err
	}

	if out.RequiresTwoFactor {
		if out.UserID == "" {
			return nil, &Error{Kind: KindDecode, Status: http.StatusOK, Detail: "two-factor challenge without user_id"}
		}
		return &LoginResult{RequiresTwoFactor: true, PendingUserID: out.UserID, Detail: out.Detail}, nil
	}

	access := out.access()
	if access == "" {
		return nil, &Error{Kind: KindDecode, Status: http.StatusOK, Detail: "no access token in response"}
	}
	return &LoginResult{
		AccessToken:  access,
		RefreshToken: out.refresh(),
		User:         out.User,
		Detail:       out.Detail,
	}, nil
}

// Logout invalidates the refresh token server-side when the portal exposes a logout
// endpoint. Without one there is nothing to revoke and Logout returns nil.
func (h *HTTP) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if h.endpoints.Logout == "" {
		return nil
	}
	var body any
	if refreshToken != "" {
		body = map[string]string{"refresh": refreshToken}
	}
	return h.do(ctx, http.MethodPost, h.endpoints.Logout, accessToken, body, nil)
}
