// Package store adapts the OS credential stores silo routes between.
//
// Two stores are involved: the user's default login keychain, assumed
// unlocked for the whole session, and a per-service protected keychain
// created at a deterministic path and gated by its own password. The Store
// interface is the full capability the core needs; the darwin
// implementation talks to the macOS Keychain, and MemoryStore implements
// the same contract in memory for tests.
package store

import (
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrNotFound is returned when a credential does not exist in the store.
var ErrNotFound = errors.New("credential not found")

// ErrAuthFailed is returned when unlocking fails because the password was
// wrong or the request was refused.
var ErrAuthFailed = errors.New("keychain authorization failed")

// ErrUnsupported is returned for protected-store operations on platforms
// without a file-based keychain.
var ErrUnsupported = errors.New("protected keychain not supported on this platform")

// Scope selects which store an item operation targets. The zero value is
// the default login keychain; a non-empty Keychain is the path of a
// protected keychain file.
type Scope struct {
	Keychain string
}

// Protected returns the scope for the protected keychain at path.
func Protected(path string) Scope {
	return Scope{Keychain: path}
}

// Store is the credential store capability consumed by the core.
//
// Create is interactive: the OS prompts the user for a password for the
// new keychain, and the keychain is left unlocked so a first write does
// not re-prompt. Lock is best-effort; callers ignore its error.
type Store interface {
	Create(path string) error
	Unlock(path, password string) error
	Lock(path string) error
	SetAutoLock(path string, idle time.Duration, lockOnSleep bool) error
	Exists(path string) bool

	Add(scope Scope, service, account, value string) error
	Find(scope Scope, service, account string) (string, error)
	Delete(scope Scope, service, account string) error
}

// DefaultDir returns the directory protected keychains are created in.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Library", "Keychains")
}

// Path derives the protected keychain path for a service. The derivation
// is pure: no I/O, same input, same path.
func Path(dir, service string) string {
	return filepath.Join(dir, service+".keychain-db")
}
