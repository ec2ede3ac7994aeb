package keychain

import (
	"errors"
	"fmt"

	"github.com/dean0x/silo/internal/prompt"
	"github.com/dean0x/silo/internal/store"
)

// ErrNotFound is returned when a credential does not exist in the store
// the current policy routes the account to. Wrapped errors carry the
// account name.
var ErrNotFound = store.ErrNotFound

// ErrCancelled is returned when the user dismisses the unlock dialog.
// Callers special-case it; no credential was added, changed or removed.
var ErrCancelled = prompt.ErrCancelled

// ErrStoreCreation is returned when creating a protected keychain fails.
var ErrStoreCreation = errors.New("keychain creation failed")

// ErrUnlockFailed is returned when the protected keychain could not be
// unlocked with the entered password.
var ErrUnlockFailed = errors.New("keychain unlock failed")

// ErrOperationFailed is returned when the underlying add/find/delete call
// fails for a reason other than not-found. Secret values never appear in
// the wrapped detail.
var ErrOperationFailed = errors.New("keychain operation failed")

// operationError maps a store adapter error: not-found passes through
// (it already carries the account), everything else becomes
// ErrOperationFailed.
func operationError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrOperationFailed, err)
}
