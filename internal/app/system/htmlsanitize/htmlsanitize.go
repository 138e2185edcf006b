// Package htmlsanitize guards user-supplied text before it is stored.
// Report descriptions and assessment notes come straight from clients,
// so anything that looks like markup is run through bluemonday.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// Sanitize removes dangerous HTML while keeping common user-generated
// formatting (links, lists, emphasis). bluemonday adds rel="nofollow"
// to anchors.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return ugcPolicy.Sanitize(s)
}

// StripTags removes all markup, leaving plain text. Used for fields
// that are never rendered as HTML: titles, tags, addresses.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}

// IsPlainText reports whether s contains no HTML tags. A lone < or >
// (as in "5 < 10") does not count as markup.
func IsPlainText(s string) bool {
	lt := strings.Index(s, "<")
	if lt == -1 {
		return true
	}
	return strings.Index(s[lt:], ">") == -1
}
