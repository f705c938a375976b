// Package normalize folds free-form input into the canonical forms stored
// in the database. Keeping this in one place prevents drift between the
// values handlers write and the values queries match on.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims and collapses inner whitespace runs to single spaces.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role lowercases and trims a role string.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status trims a status string. Statuses are stored in display case
// ("Under Review"), so only surrounding whitespace is removed.
func Status(s string) string {
	return strings.TrimSpace(s)
}

// MID uppercases and trims a staff ID.
func MID(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Quartile canonicalizes a journal quartile to Q1..Q4 form.
func Quartile(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
