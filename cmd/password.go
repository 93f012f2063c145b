// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"lodgeportal/cli/internal/auth"
)

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Recover or change your password",
}

// passwordForgotCmd requests a reset link by email.
var passwordForgotCmd = &cobra.Command{
	Use:   "forgot [email]",
	Short: "Email a password reset link",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		var email string
		if len(args) == 1 {
			email = args[0]
		} else if email, err = a.prompt.Line("Email", ""); err != nil {
			return err
		}

		var notice string
		err = withSpinner("Requesting reset link", func() error {
			var err error
			notice, err = a.recovery.RequestReset(ctx, email)
			return err
		})
		if err != nil {
			return reportError("requesting a reset link", err)
		}
		pterm.Info.Println(notice)
		pterm.Println("  Then run: lodge password reset <link from the email>")
		return nil
	},
}

// passwordResetCmd sets a new password from a reset link.
var passwordResetCmd = &cobra.Command{
	Use:   "reset [link-or-token]",
	Short: "Set a new password with the link from the reset email",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		var link string
		if len(args) == 1 {
			link = args[0]
		} else if link, err = a.prompt.Line("Reset link", ""); err != nil {
			return err
		}
		newPassword, err := a.prompt.Secret("New password")
		if err != nil {
			return err
		}
		confirm, err := a.prompt.Secret("Confirm new password")
		if err != nil {
			return err
		}

		err = withSpinner("Resetting password", func() error {
			return a.recovery.ConfirmReset(ctx, link, newPassword, confirm)
		})
		if err != nil {
			return reportError("resetting the password", err)
		}
		pterm.Success.Println("Your password was changed. Run 'lodge login' to sign in.")
		return nil
	},
}

// passwordChangeCmd changes the password of the signed-in member.
var passwordChangeCmd = &cobra.Command{
	Use:   "change",
	Short: "Change your password",
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
		if st.Status() != auth.Authenticated {
			return notSignedIn()
		}
		current, err := a.prompt.Secret("Current password")
		if err != nil {
			return err
		}
		newPassword, err := a.prompt.Secret("New password")
		if err != nil {
			return err
		}
		confirm, err := a.prompt.Secret("Confirm new password")
		if err != nil {
			return err
		}

		err = withSpinner("Changing password", func() error {
			return a.account.ChangePassword(ctx, current, newPassword, confirm)
		})
		if err != nil {
			return reportError("changing the password", err)
		}
		pterm.Success.Println("Your password was changed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(passwordCmd)
	passwordCmd.AddCommand(passwordForgotCmd, passwordResetCmd, passwordChangeCmd)
}
