package authz

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"lodgeportal/cli/internal/auth"
)

// Requirement describes who may open a screen or run an action. Zero-valued fields
// impose nothing; a zero Requirement only needs a signed-in principal.
type Requirement struct {
	Admin     bool
	Roles     []string
	Offices   []string
	MinDegree auth.Degree
}

// Decision is the outcome of a Requirement check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Check evaluates r against p. Checks run in order: signed in, admin, roles, offices,
// degree. Administrators pass the office check without holding an office.
func (r Requirement) Check(p *auth.Principal) Decision {
	switch {
	case p == nil:
		return deny("You must be signed in.")
	case r.Admin && !IsAdmin(p):
		return deny("This section is restricted to administrators.")
	case len(r.Roles) > 0 && !slices.ContainsFunc(r.Roles, func(role string) bool { return HasRole(p, role) }):
		return deny("Your role does not give access to this section.")
	case len(r.Offices) > 0 && !HasAnyOffice(p, r.Offices...) && !IsAdmin(p):
		return deny(fmt.Sprintf("Requires one of the offices: %s.", strings.Join(r.Offices, ", ")))
	case r.MinDegree > 0 && !HasDegree(p, r.MinDegree):
		return deny(fmt.Sprintf("Requires the %s degree.", r.MinDegree))
	}
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Named requirements for the portal's gated sections.
var Named = map[string]Requirement{
	"dashboard":      {},
	"library":        {MinDegree: auth.Apprentice},
	"fellowcraft":    {MinDegree: auth.Fellowcraft},
	"master-library": {MinDegree: auth.MasterMason},
	"members":        {Offices: []string{auth.OfficeWorshipfulMaster, auth.OfficeSecretary}},
	"minutes":        {Offices: []string{auth.OfficeWorshipfulMaster, auth.OfficeSecretary}},
	"treasury":       {Offices: []string{auth.OfficeWorshipfulMaster, auth.OfficeTreasurer, auth.OfficeSecretary}},
	"payments":       {Offices: []string{auth.OfficeWorshipfulMaster, auth.OfficeTreasurer}},
	"degrees":        {Offices: []string{auth.OfficeWorshipfulMaster, auth.OfficeJuniorWarden}},
	"users":          {Admin: true},
	"settings":       {Admin: true},
}

// Lookup returns the named requirement.
func Lookup(name string) (Requirement, bool) {
	r, ok := Named[strings.ToLower(strings.TrimSpace(name))]
	return r, ok
}

// Names returns the named requirements in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(Named))
	for n := range Named {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
