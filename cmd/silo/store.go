package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var storeCmd = &cobra.Command{
	Use:   "store <service> <account> [value]",
	Short: "Store a credential",
	Long: `Store a credential under an account. If value is omitted, it is read from
the terminal without echo, or from stdin when piped. Protected accounts
go to the service's password-gated keychain; the rest go to the login
keychain.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kc, err := openKeychain()
		if err != nil {
			return err
		}
		service, account := args[0], args[1]

		var value string
		if len(args) == 3 {
			value = args[2]
		} else if term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprint(os.Stderr, "Enter credential value: ")
			b, err := term.ReadPassword(int(os.Stdin.Fd()))
			if err != nil {
				return fmt.Errorf("reading value: %w", err)
			}
			fmt.Fprintln(os.Stderr)
			value = string(b)
		} else {
			b, err := os.ReadFile("/dev/stdin")
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			value = strings.TrimRight(string(b), "\n")
		}

		if err := kc.Store(service, account, value); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Credential %q stored\n", account)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(storeCmd)
}
