// Package keychain routes credentials between two macOS Keychain stores
// based on a protection policy.
//
// Unprotected accounts go to the default login keychain with no friction.
// Protected accounts (default: account names containing "production") go
// to a per-service keychain file gated by its own password: every access
// is wrapped in unlock → one operation → lock, with a short auto-lock
// armed inside the unlocked window so the keychain self-locks even if the
// explicit lock is skipped.
//
// Operations are synchronous and may block indefinitely on a human-facing
// password dialog. unlock/operate/lock is not atomic at the OS level, so
// concurrent operations against one service's protected keychain need
// external serialization by the caller; an in-process lock could not cover
// other processes anyway.
package keychain

import (
	"fmt"
	"strings"
	"time"

	"github.com/dean0x/silo/internal/policy"
	"github.com/dean0x/silo/internal/prompt"
	"github.com/dean0x/silo/internal/store"
)

// Keychain is the public operation set over the two credential stores.
type Keychain struct {
	store       store.Store
	policy      policy.Policy
	prompt      prompt.Prompter
	dir         string
	idle        time.Duration
	lockOnSleep bool
}

// Options configures a Keychain. Policy is supplied fresh on every
// construction; a Keychain is built per invocation, not held as a session.
type Options struct {
	Policy      policy.Policy
	Dir         string        // protected keychain directory, "" = OS default
	AutoLock    time.Duration // idle timeout armed on protected keychains
	LockOnSleep bool
}

// New creates a Keychain over the given store and prompter.
func New(st store.Store, pr prompt.Prompter, opts Options) *Keychain {
	dir := opts.Dir
	if dir == "" {
		dir = store.DefaultDir()
	}
	idle := opts.AutoLock
	if idle <= 0 {
		idle = 10 * time.Second
	}
	return &Keychain{
		store:       st,
		policy:      opts.Policy,
		prompt:      pr,
		dir:         dir,
		idle:        idle,
		lockOnSleep: opts.LockOnSleep,
	}
}

// Path returns the protected keychain path derived for a service.
func (k *Keychain) Path(service string) string {
	return store.Path(k.dir, service)
}

// CreateStore creates the protected keychain for a service. Idempotent:
// an existing keychain is success with no modification. Creation prompts
// the user for the new keychain's password and leaves it unlocked so an
// immediate first write does not re-prompt.
func (k *Keychain) CreateStore(service string) error {
	path := k.Path(service)
	if k.store.Exists(path) {
		return nil
	}
	if err := k.store.Create(path); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreCreation, err)
	}
	return nil
}

// Store writes a credential, routed by the current policy evaluation.
//
// A protected write to a service with no keychain yet creates it (one
// creation prompt), writes while the fresh keychain is still unlocked,
// then activates protection. A protected write to an existing keychain
// runs the full unlock/operate/lock protocol.
func (k *Keychain) Store(service, account, value string) error {
	if !k.policy.Protected(account) {
		if err := k.store.Add(store.Scope{}, service, account, value); err != nil {
			return operationError(err)
		}
		return nil
	}

	path := k.Path(service)
	if !k.store.Exists(path) {
		if err := k.store.Create(path); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreCreation, err)
		}
		if err := k.store.Add(store.Protected(path), service, account, value); err != nil {
			k.lock(path)
			return operationError(err)
		}
		return k.Activate(service)
	}

	return k.withUnlocked(path, unlockReason(service), func() error {
		if err := k.store.Add(store.Protected(path), service, account, value); err != nil {
			return operationError(err)
		}
		return nil
	})
}

// Get reads a credential, routed by the current policy evaluation. The
// raw value is returned with trailing whitespace and newlines trimmed.
// A credential that lives in the other store than the one the current
// policy implies surfaces as not-found.
func (k *Keychain) Get(service, account string) (string, error) {
	var value string
	find := func(scope store.Scope) error {
		v, err := k.store.Find(scope, service, account)
		if err != nil {
			return operationError(err)
		}
		value = v
		return nil
	}

	if !k.policy.Protected(account) {
		if err := find(store.Scope{}); err != nil {
			return "", err
		}
		return strings.TrimRight(value, " \t\r\n"), nil
	}

	path := k.Path(service)
	if !k.store.Exists(path) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, account)
	}
	err := k.withUnlocked(path, unlockReason(service), func() error {
		return find(store.Protected(path))
	})
	if err != nil {
		return "", err
	}
	return strings.TrimRight(value, " \t\r\n"), nil
}

// Remove deletes a credential, with the same routing and error mapping
// as Get.
func (k *Keychain) Remove(service, account string) error {
	if !k.policy.Protected(account) {
		if err := k.store.Delete(store.Scope{}, service, account); err != nil {
			return operationError(err)
		}
		return nil
	}

	path := k.Path(service)
	if !k.store.Exists(path) {
		return fmt.Errorf("%w: %s", ErrNotFound, account)
	}
	return k.withUnlocked(path, unlockReason(service), func() error {
		if err := k.store.Delete(store.Protected(path), service, account); err != nil {
			return operationError(err)
		}
		return nil
	})
}

// Status reports whether the protected keychain for a service exists.
// Pure existence check: no locking, no prompt.
type Status struct {
	Configured bool
	Path       string
}

// StatusOf returns the protection status for a service.
func (k *Keychain) StatusOf(service string) Status {
	path := k.Path(service)
	return Status{
		Configured: k.store.Exists(path),
		Path:       path,
	}
}

// Activate brings a freshly created keychain under full protection: arm
// the short auto-lock timeout, then lock. Called once after the very
// first protected write, which happens while the new keychain is still
// unlocked.
func (k *Keychain) Activate(service string) error {
	path := k.Path(service)
	if err := k.store.SetAutoLock(path, k.idle, k.lockOnSleep); err != nil {
		k.lock(path)
		return fmt.Errorf("%w: %v", ErrOperationFailed, err)
	}
	k.lock(path)
	return nil
}

func unlockReason(service string) string {
	return fmt.Sprintf("Enter the password for the %q keychain to access a protected credential.", service)
}
