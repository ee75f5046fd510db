package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated identity and selected company",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		// Round-trips through the pipeline, so an expired token is
		// refreshed silently before we report anything.
		identity, err := a.currentUser.Execute(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("User:    %s (%s)\n", identity.Name, identity.Email)
		if identity.IsSuperuser {
			fmt.Println("Role:    superuser")
		}
		if tenantID := a.store.CurrentTenantID(); tenantID != "" {
			fmt.Printf("Company: %s\n", tenantID)
			if m, ok := identity.MembershipFor(tenantID); ok && !identity.IsSuperuser {
				fmt.Printf("Role:    %s\n", m.Role)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
