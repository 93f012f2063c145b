// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides the structured logger used across the CLI together with
// utilities for masking sensitive information in log messages and formatting errors for
// user-friendly display while protecting credentials and secrets.
//
// The package helps ensure that passwords, bearer tokens, refresh tokens and one-time
// codes are not accidentally exposed in logs or error messages shown to users.
package logging

import (
	"regexp"
	"strings"
)

var (
	rePassword = regexp.MustCompile(`(?i)("?(?:new_|old_)?password(?:_confirm)?"?\s*[=:]\s*"?)([^\s;&",}]+)`)
	reToken    = regexp.MustCompile(`(?i)((?:refresh_token|refresh|access|token)"?\s*[=:]\s*"?|bearer\s+)([A-Za-z0-9._~+/=-]+)`)
	reCode     = regexp.MustCompile(`(?i)("?code"?\s*[=:]\s*"?)(\d{4,8})`)
	reURLPass  = regexp.MustCompile(`(?i)(://)([^:/@]+):([^@]+)(@)`)
)

// Mask replaces sensitive values in the input string with "***".
// For URLs carrying userinfo, both username and password are masked.
func Mask(s string) string {
	out := s
	out = rePassword.ReplaceAllString(out, "$1***")
	out = reToken.ReplaceAllString(out, "$1***")
	out = reCode.ReplaceAllString(out, "$1***")
	out = reURLPass.ReplaceAllString(out, "$1*:*$4")
	for _, k := range []string{"LODGE_KEYRING_PASSWORD", "ACCESS_TOKEN"} {
		out = strings.ReplaceAll(out, k+"=", k+"=***")
	}
	return out
}

// Fingerprint returns a short, non-reversible hint of a secret suitable for debug logs.
func Fingerprint(secret string) string {
	if secret == "" {
		return "<empty>"
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "…" + secret[len(secret)-2:]
}
