package utils

import "strings"

// Slugify derives a url-safe slug from a title: lowercase, runs of
// non-alphanumeric characters collapse to single dashes. Slugs derived from
// lesson titles are not guaranteed globally unique; course slugs are made
// unique by the database index.
func Slugify(s string) string {
	var b strings.Builder
	lastDash := true // suppress leading dash
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
