// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ID is a portal object identifier. The portal emits numeric ids; ID also accepts strings.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := json.Number(id).Int64(); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// User is the wire shape of a portal account.
type User struct {
	ID               ID           `json:"id"`
	Username         string       `json:"username"`
	Email            string       `json:"email"`
	FirstName        string       `json:"first_name"`
	LastName         string       `json:"last_name"`
	SymbolicName     string       `json:"symbolic_name"`
	Role             string       `json:"role"`
	IsStaff          bool         `json:"is_staff"`
	IsAdmin          bool         `json:"is_admin"`
	IsSuperuser      bool         `json:"is_superuser"`
	Degree           int          `json:"degree"`
	Offices          []string     `json:"offices"`
	Office           string       `json:"office"`
	OfficerRole      *OfficerRole `json:"officer_role"`
	TwoFactorEnabled bool         `json:"two_factor_enabled"`
}

// OfficerRole is an office assignment as returned by the profile endpoint.
type OfficerRole struct {
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// OfficeList merges the office fields a portal may send into one de-duplicated list.
// An inactive officer_role is ignored.
func (u *User) OfficeList() []string {
	var out []string
	seen := map[string]bool{}
	add := func(o string) {
		o = strings.TrimSpace(o)
		if o == "" || seen[o] {
			return
		}
		seen[o] = true
		out = append(out, o)
	}
	for _, o := range u.Offices {
		add(o)
	}
	add(u.Office)
	if u.OfficerRole != nil && u.OfficerRole.IsActive {
		add(u.OfficerRole.Role)
	}
	return out
}

// LoginResult is the outcome of Login or VerifyTwoFactor.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	// User is nil when the portal did not embed the profile in the token response.
	User *User

	RequiresTwoFactor bool
	PendingUserID     ID
	Detail            string
}

// Registration is the payload of a new account.
type Registration struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	SymbolicName string `json:"symbolic_name,omitempty"`
	Degree       int    `json:"degree,omitempty"`
	PhoneNumber  string `json:"phone_number,omitempty"`
}

// PasswordReset confirms a reset with the server-issued uid/token pair.
type PasswordReset struct {
	UID             string `json:"uid,omitempty"`
	Token           string `json:"token"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm,omitempty"`
}

// TwoFactorSetup is the provisioning data for a new TOTP device.
type TwoFactorSetup struct {
	Secret string `json:"secret_key"`
	// QRCode is a data: URI holding a PNG image.
	QRCode          string `json:"qr_code"`
	ProvisioningURI string `json:"provisioning_uri,omitempty"`
}
