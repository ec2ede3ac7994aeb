//go:build !darwin

package prompt

import "errors"

// Dialog is a stub on platforms without a native modal dialog. Protected
// keychains are macOS-only, so this prompter is never reached in normal
// operation.
type Dialog struct{}

var _ Prompter = (*Dialog)(nil)

// NewDialog creates a stub prompter.
func NewDialog() *Dialog {
	return &Dialog{}
}

func (d *Dialog) RequestPassword(reason string) (string, error) {
	return "", errors.New("modal password prompt not supported on this platform")
}
