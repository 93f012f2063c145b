package backend

import (
	"context"
	"net/http"
)

// SetupTwoFactor starts TOTP enrolment. Any unconfirmed device is replaced server-side.
func (h *HTTP) SetupTwoFactor(ctx context.Context, accessToken string) (*TwoFactorSetup, error) {
	var out TwoFactorSetup
	if err := h.do(ctx, http.MethodGet, h.endpoints.TwoFactorSetup, accessToken, nil, &out); err != nil {
		return nil, err
	}
	if out.Secret == "" {
		return nil, &Error{Kind: KindDecode, Status: http.StatusOK, Detail: "no secret in setup response"}
	}
	return &out, nil
}

// ConfirmTwoFactorSetup activates the pending device with a code it generated.
func (h *HTTP) ConfirmTwoFactorSetup(ctx context.Context, accessToken, code string) error {
	return h.do(ctx, http.MethodPost, h.endpoints.TwoFactorSetup, accessToken, map[string]string{"code": code}, nil)
}

// DisableTwoFactor turns the second factor off for the signed-in user.
func (h *HTTP) DisableTwoFactor(ctx context.Context, accessToken string) error {
	return h.do(ctx, http.MethodPost, h.endpoints.TwoFactorDisable, accessToken, nil, nil)
}
