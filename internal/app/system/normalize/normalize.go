// Package normalize centralizes string normalization for user input so
// that stores and handlers never disagree on casing or whitespace.
package normalize

import "strings"

// Email lowercases and trims an email address. Emails are compared
// case-insensitively everywhere, so they are stored folded.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Username lowercases and trims a username. Usernames are unique
// case-insensitively, so they are stored folded like emails.
func Username(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a person's name but preserves its case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role value for comparison against the
// known role set.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims a report status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a free-text query parameter, preserving case for
// display while making emptiness checks reliable.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
