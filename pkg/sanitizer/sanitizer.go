// Package sanitizer normalizes untrusted input before validation and
// storage.
package sanitizer

import (
	"regexp"
	"strings"
)

var consecutiveDots = regexp.MustCompile(`\.{2,}`)

// NormalizeEmail lowercases and trims an email address and collapses
// consecutive dots in the local part. Uniqueness checks and lookups must
// both go through this so case variants map to the same account.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return email
	}

	local := consecutiveDots.ReplaceAllString(email[:at], ".")
	local = strings.Trim(local, ".")

	return local + email[at:]
}

// TrimString trims surrounding whitespace.
func TrimString(s string) string {
	return strings.TrimSpace(s)
}
