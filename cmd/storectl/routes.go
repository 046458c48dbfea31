package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xgrltd/storefront/internal/domain/identity"
)

func newRoutesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Inspect the route guard",
	}

	var authenticated bool
	check := &cobra.Command{
		Use:   "check <path>...",
		Short: "Report whether each path is protected and where a visit lands",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state := identity.State{IsAuthenticated: authenticated}
			table := newTable(a.out, "Path", "Protected", "Result")
			for _, path := range args {
				result := "allowed"
				if to := identity.GuardRedirect(path, state); to != "" {
					result = "redirect " + to
				}
				table.Append([]string{path, strconv.FormatBool(identity.IsRouteProtected(path)), result})
			}
			table.Render()
			return nil
		},
	}
	check.Flags().BoolVar(&authenticated, "authenticated", false, "Evaluate as a logged-in session")

	list := &cobra.Command{
		Use:   "protected",
		Short: "List the protected route prefixes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, prefix := range identity.ProtectedPrefixes() {
				fmt.Fprintln(a.out, prefix)
			}
		},
	}

	cmd.AddCommand(check, list)
	return cmd
}
