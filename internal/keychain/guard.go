package keychain

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dean0x/silo/internal/prompt"
)

// withUnlocked wraps exactly one store operation in the protected-access
// protocol: prompt for the password, unlock, arm the auto-lock inside the
// same unlocked window, run the operation, and lock again on every exit
// path. Each call re-enters at locked; no state survives between calls.
func (k *Keychain) withUnlocked(path, reason string, op func() error) error {
	password, err := k.prompt.RequestPassword(reason)
	if err != nil {
		if errors.Is(err, prompt.ErrCancelled) {
			return ErrCancelled
		}
		return fmt.Errorf("%w: %v", ErrUnlockFailed, err)
	}
	// An empty password is a cancellation, never a credential.
	if password == "" {
		return ErrCancelled
	}

	if err := k.store.Unlock(path, password); err != nil {
		return fmt.Errorf("%w: %v", ErrUnlockFailed, err)
	}
	defer k.lock(path)

	// Re-arm the auto-lock before touching any credential. An external
	// actor could otherwise unlock a keychain whose timeout was cleared
	// and come back later.
	if err := k.store.SetAutoLock(path, k.idle, k.lockOnSleep); err != nil {
		return fmt.Errorf("%w: %v", ErrOperationFailed, err)
	}

	return op()
}

// lock locks the protected keychain best-effort. A lock failure (for
// example the keychain already locked itself) is never escalated over the
// operation's own outcome.
func (k *Keychain) lock(path string) {
	if err := k.store.Lock(path); err != nil {
		slog.Warn("locking keychain failed", "path", path, "error", err)
	}
}
