package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"erp-core/internal/domain"
)

var canCmd = &cobra.Command{
	Use:   "can ACTION SUBJECT",
	Short: "Query a capability for the current session",
	Long: `Answers whether the session may perform ACTION on SUBJECT.

Prints "yes" or "no" and exits 0 or 1 respectively, so the command
composes in shell scripts:

  erpctl can approve Finance && run-approval-batch`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		if a.store.Ability().Can(domain.Action(args[0]), args[1]) {
			fmt.Println("yes")
			return nil
		}
		fmt.Println("no")
		return fmt.Errorf("denied: %s on %s", args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(canCmd)
}
