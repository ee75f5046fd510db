package cmd

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login EMAIL",
	Short: "Authenticate against the ERP API and persist the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		password, err := readPassword()
		if err != nil {
			return err
		}

		if err := a.login.Execute(cmd.Context(), args[0], password); err != nil {
			return err
		}

		identity := a.store.Identity()
		fmt.Printf("Logged in as %s (%s)\n", identity.Name, identity.Email)
		if tenantID := a.store.CurrentTenantID(); tenantID != "" {
			fmt.Printf("Current company: %s\n", tenantID)
		}
		return nil
	},
}

// readPassword prompts on the terminal without echo, falling back to a
// plain line read when stdin is not a terminal (piped input in CI).
func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	defer fmt.Fprintln(os.Stderr)

	if term.IsTerminal(int(syscall.Stdin)) {
		raw, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}

	var password string
	if _, err := fmt.Fscanln(os.Stdin, &password); err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return password, nil
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
