package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:     "remove <service> <account>",
	Short:   "Remove a credential",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kc, err := openKeychain()
		if err != nil {
			return err
		}
		if err := kc.Remove(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Credential %q removed\n", args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
