package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Manage the company scope of the session",
}

var companyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List companies the identity can act in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		current := a.store.CurrentTenantID()
		for _, tenant := range a.store.Tenants() {
			marker := " "
			if tenant.ID == current {
				marker = "*"
			}
			status := ""
			if !tenant.Active {
				status = " (inactive)"
			}
			fmt.Printf("%s %s  %s%s\n", marker, tenant.ID, tenant.Name, status)
		}
		return nil
	},
}

var companySwitchCmd = &cobra.Command{
	Use:   "switch COMPANY_ID",
	Short: "Scope subsequent requests to another company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		if err := a.switchUC.Execute(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Current company: %s\n", args[0])
		return nil
	},
}

func init() {
	companyCmd.AddCommand(companyListCmd)
	companyCmd.AddCommand(companySwitchCmd)
	rootCmd.AddCommand(companyCmd)
}
