// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"lodgeportal/cli/internal/auth"
	apperr "lodgeportal/cli/internal/errors"
	"lodgeportal/cli/internal/logging"
	"lodgeportal/cli/internal/task"
)

var (
	loginUsername string
	loginRemember bool
)

// loginCmd signs in with username and password, then a one-time code when the account
// has two-factor authentication enabled.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"signin"},
	Short:   "Sign in to the lodge portal",
	Long: `The login command asks for your username and password and, when two-factor
authentication is enabled for your account, for the 6-digit code from your
authenticator app.

With --remember the session is kept in the OS keychain and survives reboots.
Without it the session lasts until you log out of your computer.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.restore(ctx)
		if err != nil {
			return err
		}
		if st.Status() == auth.Authenticated {
			pterm.Info.Printfln("Already signed in as %s. Run 'lodge logout' to switch accounts.", st.Principal.Username)
			return nil
		}

		username := loginUsername
		if username == "" {
			last, _ := a.tokens.LastUsername()
			if username, err = a.prompt.Line("Username", last); err != nil {
				return err
			}
		}
		password, err := a.prompt.Secret("Password")
		if err != nil {
			return err
		}

		// resend notices live only as long as this command
		scope := task.New(ctx, nil, a.logger)
		defer scope.Close()
		a.flow.Countdown().Bind(scope, func() {
			pterm.Info.Println("You can ask for a new code now: enter 'r'.")
		})

		err = withSpinner("Signing in", func() error {
			return a.flow.Login(ctx, username, password, loginRemember)
		})
		if err != nil {
			return reportError("signing in", err)
		}

		if a.flow.State() == auth.TwoFactorRequired {
			if err := verifySecondFactor(ctx, a); err != nil {
				return err
			}
		}

		showLoginGreeting(a.session.Principal())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Portal username")
	loginCmd.Flags().BoolVarP(&loginRemember, "remember", "r", false, "Keep the session in the OS keychain")
}

// verifySecondFactor prompts for codes until one is accepted or the user gives up.
func verifySecondFactor(ctx context.Context, a *app) error {
	pterm.Info.Println("Two-factor authentication is enabled for this account.")
	for {
		code, err := a.prompt.Line("Verification code (r to resend, q to cancel)", "")
		if err != nil {
			a.flow.Cancel()
			return err
		}

		switch strings.ToLower(code) {
		case "q", "quit":
			a.flow.Cancel()
			pterm.Info.Println("Sign-in canceled.")
			return errSilent
		case "r", "resend":
			if err := a.flow.ResendCode(); err != nil {
				pterm.Warning.Println(apperr.UserMessage(err))
			} else {
				pterm.Info.Printfln("Enter the newest code from your authenticator app. Next resend in %s.", a.flow.Countdown().Window())
			}
			continue
		}

		err = withSpinner("Verifying", func() error {
			return a.flow.VerifyTwoFactor(ctx, code)
		})
		if err == nil {
			return nil
		}
		if a.flow.State() != auth.TwoFactorRequired {
			return reportError("verifying the code", err)
		}
		pterm.Error.Println(logging.PresentError("", err))
		if left := a.flow.Countdown().Remaining(); left > 0 {
			pterm.Println(pterm.Gray(fmt.Sprintf("  A new code can be requested in %ds.", int(math.Ceil(left.Seconds())))))
		}
	}
}

// showLoginGreeting prints a friendly greeting after sign-in.
func showLoginGreeting(p *auth.Principal) {
	if p == nil {
		pterm.Success.Println("Signed in.")
		return
	}
	greetings := []string{
		"Welcome back, %s!",
		"Good to see you, %s.",
		"Signed in as %s.",
		"The lodge is open, %s.",
	}
	pterm.Success.Printfln(greetings[rand.Intn(len(greetings))], p.DisplayName)
}
