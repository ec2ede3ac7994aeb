//go:build !darwin

package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/zalando/go-keyring"
)

// SystemStore covers non-darwin platforms. Default-store operations go to
// the OS keyring (Secret Service, Windows Credential Manager); file-based
// protected keychains are a macOS concept, so protected operations return
// ErrUnsupported.
type SystemStore struct{}

var _ Store = (*SystemStore)(nil)

// NewSystemStore creates a keyring-backed credential store.
func NewSystemStore() *SystemStore {
	return &SystemStore{}
}

func (s *SystemStore) Create(path string) error { return ErrUnsupported }

func (s *SystemStore) Unlock(path, password string) error { return ErrUnsupported }

func (s *SystemStore) Lock(path string) error { return ErrUnsupported }

func (s *SystemStore) SetAutoLock(path string, idle time.Duration, lockOnSleep bool) error {
	return ErrUnsupported
}

func (s *SystemStore) Exists(path string) bool { return false }

func (s *SystemStore) Add(scope Scope, service, account, value string) error {
	if scope.Keychain != "" {
		return ErrUnsupported
	}
	if err := keyring.Set(service, account, value); err != nil {
		return fmt.Errorf("keyring set %q: %w", account, err)
	}
	return nil
}

func (s *SystemStore) Find(scope Scope, service, account string) (string, error) {
	if scope.Keychain != "" {
		return "", ErrUnsupported
	}
	value, err := keyring.Get(service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, account)
		}
		return "", fmt.Errorf("keyring get %q: %w", account, err)
	}
	return value, nil
}

func (s *SystemStore) Delete(scope Scope, service, account string) error {
	if scope.Keychain != "" {
		return ErrUnsupported
	}
	if err := keyring.Delete(service, account); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, account)
		}
		return fmt.Errorf("keyring delete %q: %w", account, err)
	}
	return nil
}
