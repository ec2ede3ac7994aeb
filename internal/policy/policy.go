// Package policy decides which credential store an account belongs to.
//
// An account is "protected" when its name matches the configured patterns
// (default: contains "production"). Protected accounts are routed to the
// password-gated per-service keychain; everything else goes to the default
// login keychain. The predicate is pure and is evaluated fresh on every
// operation — changing the patterns between calls changes routing
// immediately, with no migration of already-stored credentials.
package policy

import "strings"

// DefaultPattern is the substring that marks an account as protected when
// no override is configured.
const DefaultPattern = "production"

// Policy classifies account names as protected or not.
type Policy struct {
	patterns []string
}

// Default returns the built-in policy: protected iff the account name
// contains "production".
func Default() Policy {
	return Policy{patterns: []string{DefaultPattern}}
}

// New returns a policy matching any of the given substrings. The override
// replaces the default entirely; an empty pattern list protects nothing.
func New(patterns []string) Policy {
	p := make([]string, len(patterns))
	copy(p, patterns)
	return Policy{patterns: p}
}

// Protected reports whether account is routed to the protected store.
func (p Policy) Protected(account string) bool {
	for _, pat := range p.patterns {
		if pat != "" && strings.Contains(account, pat) {
			return true
		}
	}
	return false
}
