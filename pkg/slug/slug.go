package slug

import "strings"

// Make derives the canonical topic slug from a user-entered title:
// lowercase, whitespace runs collapsed to single hyphens, anything outside
// [a-z0-9-] dropped. Deterministic, so the same title always resolves to
// the same discussion.
func Make(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))

	var b strings.Builder
	b.Grow(len(title))
	lastHyphen := false
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '\t' || r == '\n' || r == '-' || r == '_':
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}

// Valid reports whether s is already a well-formed slug.
func Valid(s string) bool {
	return s != "" && s == Make(s)
}
