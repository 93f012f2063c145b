// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package manifest handles dynamic portal endpoint configuration. A portal may publish a
// client manifest that relocates the REST paths; when it does not, Defaults are used.
package manifest

// Manifest represents the endpoint configuration published by the portal.
type Manifest struct {
	Version int           `json:"version"`
	HTTP    HTTPEndpoints `json:"http"`
}

// HTTPEndpoints contains REST API endpoint paths, relative to the API base URL.
type HTTPEndpoints struct {
	Login             string `json:"token_issue"`
	RefreshToken      string `json:"token_refresh"`
	Logout            string `json:"logout,omitempty"` // optional; empty disables remote logout
	Me                string `json:"account_whoami"`
	Register          string `json:"account_register"`
	ChangePassword    string `json:"password_change"`
	PasswordReset     string `json:"password_reset"`
	PasswordResetDone string `json:"password_reset_confirm"`
	TwoFactorVerify   string `json:"two_factor_verify"`
	TwoFactorSetup    string `json:"two_factor_setup"`
	TwoFactorDisable  string `json:"two_factor_disable"`
}

// Defaults returns the endpoint layout of a stock portal deployment.
func Defaults() *Manifest {
	return &Manifest{
		Version: 1,
		HTTP: HTTPEndpoints{
			Login:             "/authentication/token/",
			RefreshToken:      "/authentication/token/refresh/",
			Me:                "/authentication/users/me/",
			Register:          "/authentication/users/",
			ChangePassword:    "/authentication/users/change-password/",
			PasswordReset:     "/authentication/password-reset/",
			PasswordResetDone: "/authentication/password-reset/confirm/",
			TwoFactorVerify:   "/authentication/two-factor/verify/",
			TwoFactorSetup:    "/authentication/two-factor/setup/",
			TwoFactorDisable:  "/authentication/two-factor/disable/",
		},
	}
}

// withDefaults fills endpoints the published manifest left empty. Logout stays optional.
func (m *Manifest) withDefaults() *Manifest {
	d := Defaults().HTTP
	h := &m.HTTP
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&h.Login, d.Login)
	fill(&h.RefreshToken, d.RefreshToken)
	fill(&h.Me, d.Me)
	fill(&h.Register, d.Register)
	fill(&h.ChangePassword, d.ChangePassword)
	fill(&h.PasswordReset, d.PasswordReset)
	fill(&h.PasswordResetDone, d.PasswordResetDone)
	fill(&h.TwoFactorVerify, d.TwoFactorVerify)
	fill(&h.TwoFactorSetup, d.TwoFactorSetup)
	fill(&h.TwoFactorDisable, d.TwoFactorDisable)
	return m
}
