package utils

import (
	"regexp"
	"strings"
)

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nonDigitRe = regexp.MustCompile(`\D`)
)

// ValidEmail reports whether s has a basic local@domain.tld shape.
func ValidEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

// NormalizeEmail lowercases and trims an email for duplicate detection.
// Returns "" when the input is not a plausible email.
func NormalizeEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if !emailRe.MatchString(s) {
		return ""
	}
	return s
}

// PhoneDigits strips every non-digit character from a phone number.
func PhoneDigits(s string) string {
	return nonDigitRe.ReplaceAllString(s, "")
}

// NormalizePhone strips non-digits for duplicate detection. Returns "" when
// fewer than 10 digits remain.
func NormalizePhone(s string) string {
	d := PhoneDigits(s)
	if len(d) < 10 {
		return ""
	}
	return d
}
