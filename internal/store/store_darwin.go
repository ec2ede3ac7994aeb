//go:build darwin

package store

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	gokeychain "github.com/keybase/go-keychain"
)

// SystemStore talks to the macOS Keychain. Item operations use the
// Security framework bindings; keychain settings go through the security
// CLI because the bindings do not wrap SecKeychainSetSettings.
type SystemStore struct{}

var _ Store = (*SystemStore)(nil)

// NewSystemStore creates a macOS-backed credential store.
func NewSystemStore() *SystemStore {
	return &SystemStore{}
}

// Create makes a new keychain at path. macOS prompts the user for the new
// keychain's password and leaves the keychain unlocked.
func (s *SystemStore) Create(path string) error {
	if _, err := gokeychain.NewKeychainWithPrompt(path); err != nil {
		return fmt.Errorf("keychain create %q: %w", path, err)
	}
	return nil
}

// Unlock unlocks the keychain at path with the given password.
func (s *SystemStore) Unlock(path, password string) error {
	if err := gokeychain.UnlockAtPath(path, password); err != nil {
		if errors.Is(err, gokeychain.ErrorAuthFailed) || errors.Is(err, gokeychain.ErrorInteractionNotAllowed) {
			return fmt.Errorf("%w: %v", ErrAuthFailed, err)
		}
		return fmt.Errorf("keychain unlock %q: %w", path, err)
	}
	return nil
}

// Lock locks the keychain at path.
func (s *SystemStore) Lock(path string) error {
	if err := gokeychain.LockAtPath(path); err != nil {
		return fmt.Errorf("keychain lock %q: %w", path, err)
	}
	return nil
}

// SetAutoLock configures the keychain to relock after the idle timeout and
// optionally on system sleep. Must be called while the keychain is
// unlocked.
func (s *SystemStore) SetAutoLock(path string, idle time.Duration, lockOnSleep bool) error {
	args := []string{"set-keychain-settings"}
	if lockOnSleep {
		args = append(args, "-l")
	}
	if secs := int(idle / time.Second); secs > 0 {
		args = append(args, "-t", strconv.Itoa(secs))
	}
	args = append(args, path)

	out, err := exec.Command("security", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("security set-keychain-settings: %v: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Exists reports whether a keychain file is present at path.
func (s *SystemStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Add stores a credential. Overwrites if it already exists (update =
// delete + add).
func (s *SystemStore) Add(scope Scope, service, account, value string) error {
	_ = s.Delete(scope, service, account)

	item := gokeychain.NewGenericPassword(
		service,
		account,
		fmt.Sprintf("silo: %s", account),
		[]byte(value),
		"",
	)
	item.SetSynchronizable(gokeychain.SynchronizableNo)
	if scope.Keychain != "" {
		item.UseKeychain(gokeychain.NewWithPath(scope.Keychain))
	} else {
		item.SetAccessible(gokeychain.AccessibleWhenUnlockedThisDeviceOnly)
	}

	if err := gokeychain.AddItem(item); err != nil {
		return fmt.Errorf("keychain add %q: %w", account, err)
	}
	return nil
}

// Find retrieves a credential from the scoped keychain.
func (s *SystemStore) Find(scope Scope, service, account string) (string, error) {
	query := gokeychain.NewItem()
	query.SetSecClass(gokeychain.SecClassGenericPassword)
	query.SetService(service)
	query.SetAccount(account)
	query.SetMatchLimit(gokeychain.MatchLimitOne)
	query.SetReturnData(true)
	if scope.Keychain != "" {
		query.SetMatchSearchList(gokeychain.NewWithPath(scope.Keychain))
	}

	results, err := gokeychain.QueryItem(query)
	if err != nil {
		if errors.Is(err, gokeychain.ErrorItemNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, account)
		}
		return "", fmt.Errorf("keychain find %q: %w", account, err)
	}
	if len(results) == 0 || len(results[0].Data) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, account)
	}
	return string(results[0].Data), nil
}

// Delete removes a credential from the scoped keychain.
func (s *SystemStore) Delete(scope Scope, service, account string) error {
	item := gokeychain.NewItem()
	item.SetSecClass(gokeychain.SecClassGenericPassword)
	item.SetService(service)
	item.SetAccount(account)
	if scope.Keychain != "" {
		item.SetMatchSearchList(gokeychain.NewWithPath(scope.Keychain))
	}

	if err := gokeychain.DeleteItem(item); err != nil {
		if errors.Is(err, gokeychain.ErrorItemNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, account)
		}
		return fmt.Errorf("keychain delete %q: %w", account, err)
	}
	return nil
}
