// Package htmlsanitize strips markup from free-text fields before they are
// stored. Agent prompts, names and business text are plain text everywhere
// they are shown.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// StripTags removes every tag (and script/style bodies) and trims the result.
// Entities produced by the policy are decoded so "&" stays "&".
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// IsPlainText reports whether s contains nothing that looks like a tag.
func IsPlainText(s string) bool {
	return !strings.Contains(s, "<")
}

// Clean is StripTags that skips the policy for input without tags.
func Clean(s string) string {
	if IsPlainText(s) {
		return strings.TrimSpace(s)
	}
	return StripTags(s)
}
