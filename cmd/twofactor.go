// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"lodgeportal/cli/internal/auth"
)

var (
	skipConfirm bool
	assumeYes   bool
)

var twoFactorCmd = &cobra.Command{
	Use:     "2fa",
	Aliases: []string{"two-factor"},
	Short:   "Manage two-factor authentication",
}

// signedIn builds the app and restores the session, or reports that nobody is signed in.
func signedIn(ctx context.Context) (*app, error) {
	a, err := newApp(ctx)
	if err != nil {
		return nil, err
	}
	st, err := a.restore(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if st.Status() != auth.Authenticated {
		_ = a.Close()
		return nil, notSignedIn()
	}
	return a, nil
}

var twoFactorSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Enrol an authenticator app",
	Long: `The setup command asks the portal for a new authenticator secret, shows it
with its otpauth:// URI, then asks for the first code to activate it. Use
--no-confirm to activate later with 'lodge 2fa confirm'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := signedIn(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.session.Principal().TwoFactorEnabled {
			pterm.Info.Println("Two-factor authentication is already on.")
			return nil
		}
		setup, err := a.account.SetupTwoFactor(ctx)
		if err != nil {
			return reportError("starting two-factor setup", err)
		}

		lines := []string{"Add this account to your authenticator app.", "", "Secret: " + setup.Secret}
		if setup.ProvisioningURI != "" {
			lines = append(lines, "URI:    "+setup.ProvisioningURI)
		}
		pterm.DefaultBox.WithTitle("Two-factor setup").Println(strings.Join(lines, "\n"))

		if skipConfirm {
			pterm.Info.Println("Run 'lodge 2fa confirm <code>' to activate it.")
			return nil
		}
		code, err := a.prompt.Line("Code from the app", "")
		if err != nil {
			return err
		}
		return confirmTwoFactor(ctx, a, code)
	},
}

var twoFactorConfirmCmd = &cobra.Command{
	Use:   "confirm [code]",
	Short: "Activate the enrolled authenticator app",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := signedIn(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		var code string
		if len(args) == 1 {
			code = args[0]
		} else if code, err = a.prompt.Line("Code from the app", ""); err != nil {
			return err
		}
		return confirmTwoFactor(ctx, a, code)
	},
}

func confirmTwoFactor(ctx context.Context, a *app, code string) error {
	err := withSpinner("Activating", func() error {
		return a.account.ConfirmTwoFactorSetup(ctx, code)
	})
	if err != nil {
		return reportError("activating two-factor authentication", err)
	}
	pterm.Success.Println("Two-factor authentication is on. You'll be asked for a code at every sign-in.")
	return nil
}

var twoFactorDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Turn two-factor authentication off",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := signedIn(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if !assumeYes {
			ok, err := a.prompt.Confirm("Turn off two-factor authentication?")
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}
		err = withSpinner("Disabling", func() error {
			return a.account.DisableTwoFactor(ctx)
		})
		if err != nil {
			return reportError("disabling two-factor authentication", err)
		}
		pterm.Success.Println("Two-factor authentication is off.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(twoFactorCmd)
	twoFactorCmd.AddCommand(twoFactorSetupCmd, twoFactorConfirmCmd, twoFactorDisableCmd)
	twoFactorSetupCmd.Flags().BoolVar(&skipConfirm, "no-confirm", false, "Only show the secret; activate later")
	twoFactorDisableCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
}
