// Package normalize canonicalizes user-supplied identity fields before
// they touch the database, so lookups and uniqueness checks agree.
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Username trims surrounding whitespace. Case is preserved for display;
// use UsernameCI for comparisons.
func Username(s string) string {
	return strings.TrimSpace(s)
}

// UsernameCI folds a username for case/diacritic-insensitive matching.
func UsernameCI(s string) string {
	return text.Fold(Username(s))
}
