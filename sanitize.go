package authshield

import (
	"html"
	"strings"

	"github.com/MrEthical07/authshield/internal"
	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

var angleStripper = strings.NewReplacer("<", "", ">", "")

var ampEscaper = strings.NewReplacer("&", "&amp;")

// SanitizeInput trims s, removes any markup and drops stray angle brackets.
// It is meant for display fields such as names, not for passwords.
func SanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	// Escaping "&" first keeps entity text such as "&lt;" literal through
	// the tokenizer. StrictPolicy entity-escapes what it keeps; one unescape
	// undoes exactly that, so "O'Brien" round-trips.
	s = html.UnescapeString(strictPolicy.Sanitize(ampEscaper.Replace(s)))
	return strings.TrimSpace(angleStripper.Replace(s))
}

// NewCSRFToken returns a random URL-safe token.
func NewCSRFToken() (string, error) {
	return internal.NewCSRFToken()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
