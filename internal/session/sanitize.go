package session

import (
	"html"
	"strings"
)

// sanitize escapes markup-significant characters before anything
// user-supplied is stored, so the stored value is already safe to render.
func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}

func displayName(s string) string {
	s = sanitize(s)
	if s == "" {
		return "Player"
	}
	return s
}
