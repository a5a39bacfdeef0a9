// Package rename turns extracted check fields into a filesystem-safe name and
// performs the collision-safe move. Placeholder substitution for missing
// fields happens here and nowhere else, so extractors keep "not found"
// distinct from the literal "unknown".
package rename

import (
	"regexp"
	"strings"
)

// Placeholder is substituted for a missing field in the target filename.
const Placeholder = "unknown"

var (
	wsRe     = regexp.MustCompile(`\s+`)
	unsafeRe = regexp.MustCompile(`[^a-z0-9_-]`)
	runsRe   = regexp.MustCompile(`_{2,}`)
)

// SanitizeName makes a field value safe for a filename: lowercased, spaces
// collapsed to single underscores, everything outside [a-z0-9_-] stripped.
// Returns "" when nothing safe remains.
func SanitizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = wsRe.ReplaceAllString(s, "_")
	s = unsafeRe.ReplaceAllString(s, "")
	s = runsRe.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
