// Package config loads silo's per-invocation configuration.
//
// The config file is not a session: it is read fresh at the start of every
// command, so editing protected_patterns changes routing on the very next
// call. Credentials already stored stay in whichever store they were
// written to.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/dean0x/silo/internal/policy"
	"github.com/dean0x/silo/internal/store"
)

// DefaultAutoLockSeconds is the idle timeout armed on protected keychains.
// Small on purpose: the keychain self-locks even if an explicit lock call
// is skipped.
const DefaultAutoLockSeconds = 10

// Config holds settings loaded from config.yaml.
type Config struct {
	// ProtectedPatterns replaces the default protection policy entirely
	// when non-empty.
	ProtectedPatterns []string `yaml:"protected_patterns"`

	// KeychainDir overrides where protected keychains live.
	KeychainDir string `yaml:"keychain_dir"`

	AutoLockSeconds int   `yaml:"auto_lock_seconds"`
	LockOnSleep     *bool `yaml:"lock_on_sleep"`
}

// DefaultPath returns the config file path under the XDG config home,
// typically ~/.config/silo/config.yaml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "silo", "config.yaml")
}

// Load reads a YAML config file from path. If the file does not exist,
// it returns an empty Config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Policy returns the protection policy: the configured pattern override,
// or the default when none is set.
func (c *Config) Policy() policy.Policy {
	if len(c.ProtectedPatterns) > 0 {
		return policy.New(c.ProtectedPatterns)
	}
	return policy.Default()
}

// Dir returns the directory protected keychains are created in.
func (c *Config) Dir() string {
	if c.KeychainDir != "" {
		return c.KeychainDir
	}
	return store.DefaultDir()
}

// AutoLock returns the idle timeout to arm on protected keychains.
func (c *Config) AutoLock() time.Duration {
	if c.AutoLockSeconds > 0 {
		return time.Duration(c.AutoLockSeconds) * time.Second
	}
	return DefaultAutoLockSeconds * time.Second
}

// Sleep reports whether protected keychains lock on system sleep.
// Defaults to true.
func (c *Config) Sleep() bool {
	if c.LockOnSleep == nil {
		return true
	}
	return *c.LockOnSleep
}
