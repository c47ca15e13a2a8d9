// Package phone normalizes parent phone numbers into the canonical national
// format +998XXXXXXXXX used across enrollment and billing records.
package phone

import (
	"regexp"
	"strings"
)

var canonicalPattern = regexp.MustCompile(`^\+998\d{9}$`)

// Normalize strips separators and restores the country prefix when the
// caller supplied a bare local number. The empty string is returned for
// inputs that cannot be shaped into the canonical format.
func Normalize(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	switch {
	case strings.HasPrefix(cleaned, "+998"):
		// already prefixed
	case strings.HasPrefix(cleaned, "998") && len(cleaned) == 12:
		cleaned = "+" + cleaned
	case len(cleaned) == 9 && !strings.HasPrefix(cleaned, "+"):
		cleaned = "+998" + cleaned
	}

	if !canonicalPattern.MatchString(cleaned) {
		return ""
	}
	return cleaned
}

// IsValid reports whether the raw value normalizes to a canonical number.
func IsValid(raw string) bool {
	return Normalize(raw) != ""
}
