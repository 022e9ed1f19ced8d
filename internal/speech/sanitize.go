package speech

import (
	"regexp"
	"strings"
)

var (
	// Conservative allow-list for synthesis input: words, digits and
	// basic punctuation. Everything else becomes a space.
	disallowedRe = regexp.MustCompile(`[^A-Za-z0-9\s.,!?;:'"()-]`)
	spacesRe     = regexp.MustCompile(`\s+`)
)

// Sanitize strips characters outside the allow-list and collapses
// whitespace so the synthesizer never receives markup or emoji.
func Sanitize(text string) string {
	clean := disallowedRe.ReplaceAllString(text, " ")
	clean = spacesRe.ReplaceAllString(clean, " ")
	return strings.TrimSpace(clean)
}
