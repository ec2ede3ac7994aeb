package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <service>",
	Short: "Report whether a service's protected keychain is configured",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kc, err := openKeychain()
		if err != nil {
			return err
		}
		status := kc.StatusOf(args[0])
		fmt.Printf("protected keychain: %s\n", status.Path)
		fmt.Printf("configured: %v\n", status.Configured)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
