// Package prompt collects keychain passwords from a human.
//
// The only real implementation is an OS-native modal dialog. There is
// deliberately no stdin-backed Prompter: a piped or otherwise
// non-interactive caller must never be able to satisfy an unlock, and a
// terminal prompt would turn end-of-input into an empty password. An
// empty answer is treated as cancellation, never as a credential.
package prompt

import "errors"

// ErrCancelled is returned when the user dismisses the password dialog or
// submits an empty answer.
var ErrCancelled = errors.New("password prompt cancelled")

// Prompter requests a password from a human. The call blocks until the
// user responds or cancels; no timeout is imposed.
type Prompter interface {
	RequestPassword(reason string) (string, error)
}
