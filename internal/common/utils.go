package common

import "strings"

// HasAny returns true if s contains any of the non-empty substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// StripAll removes every occurrence of the substrings from s and trims the
// surrounding whitespace.
func StripAll(s string, subs ...string) string {
	for _, sub := range subs {
		if sub != "" {
			s = strings.ReplaceAll(s, sub, "")
		}
	}
	return strings.TrimSpace(s)
}
