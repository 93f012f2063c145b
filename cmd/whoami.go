package cmd

import (
	"github.com/spf13/cobra"

	"lodgeportal/cli/internal/auth"
)

// whoamiCmd shows the signed-in member, restoring the stored session first.
var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Aliases: []string{"me"},
	Short:   "Show the signed-in member",
	Long: `The whoami command restores your stored session, refreshing the access token
if it expired, and shows your profile: role, degree, offices and whether
two-factor authentication is on.`,

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
		printPrincipal(st.Principal)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
