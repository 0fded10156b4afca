package domain

import "strings"

// NormalizeHumanName trims leading/trailing whitespace and collapses internal whitespace runs.
// It is used for first/last name normalization on signup and profile updates.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeLogin trims and lowercases identifiers the bank API compares case-insensitively
// (email addresses and usernames).
func NormalizeLogin(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
