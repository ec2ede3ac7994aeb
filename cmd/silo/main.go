package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dean0x/silo/internal/config"
	"github.com/dean0x/silo/internal/keychain"
	"github.com/dean0x/silo/internal/prompt"
	"github.com/dean0x/silo/internal/store"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "silo",
	Short: "Policy-routed credential storage for macOS Keychain",
	Long: `silo stores credentials in one of two places based on their account name:
accounts matching the protection policy (default: containing "production")
go to a per-service password-gated keychain that is unlocked per access
and re-locked afterward; everything else goes to the login keychain.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file path")
}

// openKeychain builds the keychain for one invocation. Configuration is
// read fresh every time so policy changes apply to the very next call.
func openKeychain() (*keychain.Keychain, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return keychain.New(store.NewSystemStore(), prompt.NewDialog(), keychain.Options{
		Policy:      cfg.Policy(),
		Dir:         cfg.Dir(),
		AutoLock:    cfg.AutoLock(),
		LockOnSleep: cfg.Sleep(),
	}), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		switch {
		case errors.Is(err, keychain.ErrCancelled):
			fmt.Fprintln(os.Stderr, "cancelled")
		default:
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
