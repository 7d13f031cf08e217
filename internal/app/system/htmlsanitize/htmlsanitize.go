// Package htmlsanitize strips dangerous markup from user-supplied text.
//
// Anonymous message content is rendered back to recipients, so it must
// never carry script, event handlers, or javascript: URLs.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// strict removes all markup, leaving plain text.
	strict = bluemonday.StrictPolicy()

	// ugc allows the usual user-generated-content subset (formatting,
	// links, lists) with javascript: and event handlers stripped.
	ugc = bluemonday.UGCPolicy()
)

// StripTags removes all HTML, returning plain text. Used for message
// content, which is stored and displayed as text.
func StripTags(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// Sanitize keeps safe formatting markup and removes everything
// executable.
func Sanitize(s string) string {
	return ugc.Sanitize(s)
}
