package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init <service>",
	Short: "Create the protected keychain for a service",
	Long: `Create the password-gated keychain that protected credentials for the
service are stored in. macOS prompts for the new keychain's password.
Running init on an already-configured service is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kc, err := openKeychain()
		if err != nil {
			return err
		}
		service := args[0]
		if kc.StatusOf(service).Configured {
			fmt.Printf("Protected keychain for %q already exists\n", service)
			return nil
		}
		if err := kc.CreateStore(service); err != nil {
			return err
		}
		fmt.Printf("Protected keychain for %q created\n", service)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
