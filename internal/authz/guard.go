package authz

import "lodgeportal/cli/internal/auth"

// PrincipalSource yields the current principal, or nil. *auth.Session implements it.
type PrincipalSource interface {
	Principal() *auth.Principal
}

var _ PrincipalSource = (*auth.Session)(nil)

// Guard evaluates predicates against whoever is signed in at call time.
type Guard struct {
	src PrincipalSource
}

// NewGuard returns a Guard over src.
func NewGuard(src PrincipalSource) *Guard {
	return &Guard{src: src}
}

func (g *Guard) HasRole(role string) bool            { return HasRole(g.src.Principal(), role) }
func (g *Guard) HasDegree(d auth.Degree) bool        { return HasDegree(g.src.Principal(), d) }
func (g *Guard) HasOffice(office string) bool        { return HasOffice(g.src.Principal(), office) }
func (g *Guard) HasAnyOffice(offices ...string) bool { return HasAnyOffice(g.src.Principal(), offices...) }
func (g *Guard) IsAdmin() bool                       { return IsAdmin(g.src.Principal()) }

// Check evaluates r against the current principal.
func (g *Guard) Check(r Requirement) Decision {
	return r.Check(g.src.Principal())
}
