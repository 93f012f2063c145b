// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"lodgeportal/cli/internal/backend"
)

var reg backend.Registration

// registerCmd creates a portal account. The new member signs in afterwards with login.
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a portal account",
	Long: `The register command creates a new member account. Missing required values
(username, email, password) are asked for interactively. The degree is 1
(Apprentice), 2 (Fellowcraft) or 3 (Master Mason).`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		r := reg
		if r.Username == "" {
			if r.Username, err = a.prompt.Line("Username", ""); err != nil {
				return err
			}
		}
		if r.Email == "" {
			if r.Email, err = a.prompt.Line("Email", ""); err != nil {
				return err
			}
		}
		if r.Password, err = a.prompt.Secret("Password"); err != nil {
			return err
		}
		confirm, err := a.prompt.Secret("Confirm password")
		if err != nil {
			return err
		}

		err = withSpinner("Creating account", func() error {
			return a.account.Register(ctx, r, confirm)
		})
		if err != nil {
			return reportError("creating the account", err)
		}
		pterm.Success.Printfln("Account %s created. Run 'lodge login' to sign in.", r.Username)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	f := registerCmd.Flags()
	f.StringVar(&reg.Username, "username", "", "Username")
	f.StringVar(&reg.Email, "email", "", "Email address")
	f.StringVar(&reg.FirstName, "first-name", "", "First name")
	f.StringVar(&reg.LastName, "last-name", "", "Last name")
	f.StringVar(&reg.SymbolicName, "symbolic-name", "", "Symbolic name")
	f.IntVar(&reg.Degree, "degree", 0, "Degree (1-3)")
	f.StringVar(&reg.PhoneNumber, "phone", "", "Phone number")
}
