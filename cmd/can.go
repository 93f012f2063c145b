package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"lodgeportal/cli/internal/authz"
)

// canCmd reports which portal sections the signed-in member may open.
var canCmd = &cobra.Command{
	Use:   "can [section]",
	Short: "Check access to portal sections",
	Long: fmt.Sprintf(`The can command checks your access to a portal section, or to every section
when none is given. It exits with status 1 when access is denied.

Sections: %s`, strings.Join(authz.Names(), ", ")),
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		if _, err := a.restore(ctx); err != nil {
			return err
		}

		if len(args) == 1 {
			req, ok := authz.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown section %q; known sections: %s", args[0], strings.Join(authz.Names(), ", "))
			}
			d := a.guard.Check(req)
			if !d.Allowed {
				pterm.Warning.Println(d.Reason)
				return errSilent
			}
			pterm.Success.Printfln("You can open %s.", strings.ToLower(args[0]))
			return nil
		}

		data := pterm.TableData{{"Section", "Access", "Reason"}}
		for _, name := range authz.Names() {
			d := a.guard.Check(authz.Named[name])
			access := pterm.Green("yes")
			if !d.Allowed {
				access = pterm.Red("no")
			}
			data = append(data, []string{name, access, d.Reason})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

func init() {
	rootCmd.AddCommand(canCmd)
}
