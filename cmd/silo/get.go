package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <service> <account>",
	Short: "Retrieve a credential",
	Long: `Print the credential's value on stdout. All diagnostics go to stderr, so
the value can be captured by a pipe. Reading a protected account unlocks
the service keychain for the single read and locks it again.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kc, err := openKeychain()
		if err != nil {
			return err
		}
		value, err := kc.Get(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
