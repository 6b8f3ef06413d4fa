package sheet

import (
	"regexp"
	"strings"
)

// FallbackSlug is used when a name has no slug-able characters.
const FallbackSlug = "tool"

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonWord       = regexp.MustCompile(`[^\w-]+`)
)

// Slugify lowercases and trims name, turns whitespace runs into "-" and drops
// everything outside [A-Za-z0-9_-].
func Slugify(name string) string {
	s := strings.TrimSpace(strings.ToLower(name))
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = nonWord.ReplaceAllString(s, "")
	if s == "" {
		return FallbackSlug
	}
	return s
}
