// Package inputval validates user-submitted values before they reach
// the stores. Field-level helpers live here; the struct-tag engine is
// in validators.go.
package inputval

import "strings"

// localAtomChars are the characters RFC 5322 permits in a dot-atom
// local part, beyond letters and digits.
const localAtomChars = "!#$%&'*+-/=?^_`{|}~"

// IsValidEmail reports whether s is a plausible email address. It is
// stricter than a bare regexp: display-name forms, leading/trailing
// dots, and consecutive dots are rejected. Single-label domains are
// accepted so dev and test environments can use addresses like
// admin@mailserver.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	return validLocalPart(s[:at]) && validDomain(s[at+1:])
}

func validLocalPart(local string) bool {
	if local == "" || strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
		return false
	}
	if strings.Contains(local, "..") {
		return false
	}
	for _, r := range local {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.':
		case strings.ContainsRune(localAtomChars, r):
		default:
			return false
		}
	}
	return true
}

func validDomain(domain string) bool {
	if domain == "" || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" {
			return false
		}
		for _, r := range label {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			case r == '-':
			default:
				return false
			}
		}
	}
	return true
}

// IsValidObjectID reports whether s is a 24-character hex string, the
// textual form of a Mongo ObjectID.
func IsValidObjectID(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 24 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// IsValidLatitude reports whether v is within the WGS84 latitude range.
func IsValidLatitude(v float64) bool {
	return v >= -90 && v <= 90
}

// IsValidLongitude reports whether v is within the WGS84 longitude range.
func IsValidLongitude(v float64) bool {
	return v >= -180 && v <= 180
}

// MinPasswordLength matches the registration and change-password rules.
const MinPasswordLength = 6

// IsValidPassword reports whether a candidate password meets the
// minimum length. No composition rules beyond length are enforced.
func IsValidPassword(s string) bool {
	return len(s) >= MinPasswordLength
}
