// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var forgetUsername bool

// logoutCmd signs out from the portal and removes the stored tokens.
var logoutCmd = &cobra.Command{
	Use:     "logout",
	Aliases: []string{"signout"},
	Short:   "Sign out and remove stored tokens",
	Long: `The logout command asks the portal to revoke your session (best effort, it
also works offline) and removes the access and refresh tokens from the OS keychain
and the session store. The remembered username is kept unless --forget is given.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := withSpinner("Signing out", func() error { return a.flow.Logout(ctx) }); err != nil {
			return err
		}
		if forgetUsername {
			if err := a.tokens.ForgetUsername(); err != nil {
				a.logger.Warn("could not forget username", a.logger.Args("error", err.Error()))
			}
		}

		pterm.Success.Println("Signed out. Your tokens were removed from this device.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
	logoutCmd.Flags().BoolVar(&forgetUsername, "forget", false, "Also forget the remembered username")
}
