// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth is the identity core of the CLI: the session container every other part
// reads the current principal from, the credential flow that moves it between states,
// password recovery, and the account operations that require a signed-in user.
package auth

import (
	"strings"

	"lodgeportal/cli/internal/backend"
)

// Degree is the masonic degree of a member. Higher degrees include the lower ones.
type Degree int

const (
	Apprentice  Degree = 1
	Fellowcraft Degree = 2
	MasterMason Degree = 3
)

func (d Degree) String() string {
	switch d {
	case Apprentice:
		return "Apprentice"
	case Fellowcraft:
		return "Fellowcraft"
	case MasterMason:
		return "Master Mason"
	default:
		return "Unknown"
	}
}

// Lodge offices.
const (
	OfficeWorshipfulMaster = "VM"
	OfficeSeniorWarden     = "PV"
	OfficeJuniorWarden     = "SV"
	OfficeSecretary        = "SEC"
	OfficeTreasurer        = "TES"
)

// Roles derived from account flags when the portal sends no explicit role.
const (
	RoleAdmin  = "admin"
	RoleStaff  = "staff"
	RoleMember = "member"
)

// Principal is the authenticated user as far as authorization is concerned.
type Principal struct {
	ID               string
	Username         string
	Email            string
	DisplayName      string
	Role             string
	Degree           Degree
	Offices          []string
	Admin            bool
	TwoFactorEnabled bool
}

// principalFromUser maps the wire profile onto a Principal.
func principalFromUser(u *backend.User) Principal {
	p := Principal{
		ID:               string(u.ID),
		Username:         u.Username,
		Email:            u.Email,
		Role:             strings.ToLower(strings.TrimSpace(u.Role)),
		Degree:           Degree(u.Degree),
		Offices:          u.OfficeList(),
		Admin:            u.IsAdmin || u.IsSuperuser,
		TwoFactorEnabled: u.TwoFactorEnabled,
	}
	if p.Role == RoleAdmin {
		p.Admin = true
	}
	if p.Role == "" {
		switch {
		case p.Admin:
			p.Role = RoleAdmin
		case u.IsStaff:
			p.Role = RoleStaff
		default:
			p.Role = RoleMember
		}
	}
	if p.Degree < 0 || p.Degree > MasterMason {
		p.Degree = 0
	}

	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	switch {
	case name != "":
		p.DisplayName = name
	case u.SymbolicName != "":
		p.DisplayName = u.SymbolicName
	default:
		p.DisplayName = u.Username
	}
	return p
}
