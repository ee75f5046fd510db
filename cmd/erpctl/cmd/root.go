// Package cmd contains all CLI commands for erpctl.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	apiURL  string
	version = "dev"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "erpctl",
	Short: "ERP session and authorization CLI",
	Long: `erpctl drives the ERP client session core from the command line.

It logs in against the remote ERP API, persists the session locally so
subsequent invocations resume without re-login, and answers capability
queries for the selected company.

Example usage:
  erpctl login alice@example.com     # Authenticate and persist the session
  erpctl whoami                      # Show identity and selected company
  erpctl company list                # List companies the identity can act in
  erpctl company switch COMP-7       # Scope subsequent requests to COMP-7
  erpctl can approve Finance         # Query a capability (exit code 0/1)
  erpctl logout                      # Revoke and clear the session`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string for the CLI.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "ERP API origin (default from ERP_API_URL)")
}
