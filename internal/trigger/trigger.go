// Package trigger recognizes the bot's command prefixes and cancel tokens.
package trigger

import (
	"regexp"
	"strings"
)

// The two literal prefixes, both case-insensitive, both accepting the same
// sub-bodies.
var (
	reMechaPrefix = regexp.MustCompile(`(?i)^mecha\b\s*`)
	reMwPrefix    = regexp.MustCompile(`(?i)^mw\b\s*`)
)

// Is reports whether the (already lowercased) text starts a top-level command.
func Is(lower string) bool {
	return strings.HasPrefix(lower, "mw") || strings.HasPrefix(lower, "mecha")
}

// Body strips the command prefix, preserving the original casing of the rest.
func Body(text string) string {
	text = reMechaPrefix.ReplaceAllString(text, "")
	return reMwPrefix.ReplaceAllString(text, "")
}

// IsCancel reports whether the (already lowercased) text is an explicit
// cancel token.
func IsCancel(lower string) bool {
	return lower == "cancel" || lower == "mw cancel" || lower == "mecha cancel"
}
