package auth

import "lodgeportal/cli/internal/backend"

// Status is the coarse session status. Exactly one holds at any time.
type Status int

const (
	Anonymous Status = iota
	PendingTwoFactor
	Authenticated
)

func (s Status) String() string {
	switch s {
	case PendingTwoFactor:
		return "pending_two_factor"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// State is a snapshot of the session. Authenticated implies Principal != nil;
// PendingTwoFactor implies Principal == nil and PendingPrincipalID != "".
type State struct {
	Principal          *Principal
	Authenticated      bool
	PendingTwoFactor   bool
	PendingPrincipalID backend.ID
}

// Status reports which of the three exclusive states the snapshot is in.
func (s State) Status() Status {
	switch {
	case s.Authenticated:
		return Authenticated
	case s.PendingTwoFactor:
		return PendingTwoFactor
	default:
		return Anonymous
	}
}
