package cmd

import (
	"strings"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"

	"lodgeportal/cli/internal/auth"
	apperr "lodgeportal/cli/internal/errors"
	"lodgeportal/cli/internal/httperrors"
)

// withSpinner runs fn while a spinner shows text. The cursor stays hidden meanwhile.
func withSpinner(text string, fn func() error) error {
	cursor.Hide()
	defer cursor.Show()

	sp, err := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start(text)
	if err != nil {
		return fn()
	}
	ferr := fn()
	_ = sp.Stop()
	return ferr
}

// reportError prints troubleshooting hints for connection failures that happened while
// performing action, then returns err for the exit status.
func reportError(action string, err error) error {
	if apperr.Is(err, apperr.Connection) {
		pterm.Error.Println(apperr.UserMessage(err))
		httperrors.Present(err, action)
		return errSilent
	}
	return err
}

// notSignedIn is printed by commands that need a session.
func notSignedIn() error {
	pterm.Info.Println("You're not signed in. Run 'lodge login' to get started.")
	return errSilent
}

// printPrincipal renders the signed-in member.
func printPrincipal(p *auth.Principal) {
	offices := "none"
	if len(p.Offices) > 0 {
		offices = strings.Join(p.Offices, ", ")
	}
	degree := "not recorded"
	if p.Degree > 0 {
		degree = p.Degree.String()
	}
	twoFactor := "off"
	if p.TwoFactorEnabled {
		twoFactor = "on"
	}

	label := pterm.NewStyle(pterm.FgLightCyan)
	lines := []string{
		label.Sprint("Username: ") + p.Username,
		label.Sprint("Email:    ") + p.Email,
		label.Sprint("Role:     ") + p.Role,
		label.Sprint("Degree:   ") + degree,
		label.Sprint("Offices:  ") + offices,
		label.Sprint("2FA:      ") + twoFactor,
	}
	pterm.DefaultBox.
		WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(p.DisplayName)).
		Println(strings.Join(lines, "\n"))
}
