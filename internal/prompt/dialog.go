package prompt

import (
	"fmt"
	"strings"
)

// dialogScript builds the AppleScript for a hidden-answer password dialog.
// Only the text the user typed reaches stdout.
func dialogScript(reason string) string {
	return fmt.Sprintf(
		`text returned of (display dialog %s with title "silo" default answer "" with hidden answer)`,
		appleScriptString(reason),
	)
}

// appleScriptString quotes s as an AppleScript string literal.
func appleScriptString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\', '"':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// userCanceled reports whether osascript stderr output indicates the user
// dismissed the dialog (AppleScript error -128).
func userCanceled(stderr string) bool {
	return strings.Contains(stderr, "-128") || strings.Contains(stderr, "User canceled")
}
