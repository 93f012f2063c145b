// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package authz answers "may this principal do that?" from the principal's role, degree
// and offices. Every predicate treats a nil principal (nobody signed in) as lacking the
// permission, so callers never need a separate logged-out branch.
package authz

import (
	"slices"

	"lodgeportal/cli/internal/auth"
)

// HasRole reports whether p's role is exactly role.
func HasRole(p *auth.Principal, role string) bool {
	return p != nil && p.Role == role
}

// HasDegree reports whether p holds at least minDegree. Higher degrees include the lower ones.
func HasDegree(p *auth.Principal, minDegree auth.Degree) bool {
	return p != nil && p.Degree >= minDegree
}

// HasOffice reports whether office is among p's offices.
func HasOffice(p *auth.Principal, office string) bool {
	return p != nil && slices.Contains(p.Offices, office)
}

// HasAnyOffice reports whether p holds at least one of offices.
func HasAnyOffice(p *auth.Principal, offices ...string) bool {
	if p == nil {
		return false
	}
	for _, o := range offices {
		if slices.Contains(p.Offices, o) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether p is a portal administrator.
func IsAdmin(p *auth.Principal) bool {
	return p != nil && p.Admin
}
