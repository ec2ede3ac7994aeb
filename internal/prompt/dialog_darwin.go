//go:build darwin

package prompt

import (
	"fmt"
	"os/exec"
	"strings"
)

// Dialog prompts for a password with a modal macOS dialog via osascript.
// It works regardless of what the process's stdin is connected to.
type Dialog struct{}

var _ Prompter = (*Dialog)(nil)

// NewDialog creates a modal-dialog prompter.
func NewDialog() *Dialog {
	return &Dialog{}
}

// RequestPassword shows the dialog and returns what the user typed.
// Dismissing the dialog or submitting nothing returns ErrCancelled.
func (d *Dialog) RequestPassword(reason string) (string, error) {
	out, err := exec.Command("osascript", "-e", dialogScript(reason)).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && userCanceled(string(exitErr.Stderr)) {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("password dialog: %w", err)
	}

	password := strings.TrimSuffix(string(out), "\n")
	if password == "" {
		return "", ErrCancelled
	}
	return password, nil
}
