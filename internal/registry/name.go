package registry

import "strings"

// maxNameLength is the DNS label length limit. Project names become
// `{name}.localhost` subdomains, so they must be valid DNS labels.
const maxNameLength = 63

// ValidName reports whether name is a valid project name: 1-63 characters of
// lowercase [a-z0-9-] with no leading, trailing, or adjacent dashes.
func ValidName(name string) bool {
	if name == "" || len(name) > maxNameLength {
		return false
	}
	prevDash := true // rejects a leading dash
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z' || c >= '0' && c <= '9':
			prevDash = false
		case c == '-':
			if prevDash {
				return false
			}
			prevDash = true
		default:
			return false
		}
	}
	return !prevDash // rejects a trailing dash
}

// NormalizeName derives a valid project name from an arbitrary string,
// typically a directory basename: lowercase, every character outside
// [a-z0-9-] replaced with a dash, runs of dashes collapsed, leading and
// trailing dashes stripped, and the result truncated to 63 characters.
// Returns "" when nothing valid remains.
func NormalizeName(raw string) string {
	var b strings.Builder
	prevDash := true // swallows leading dashes
	for _, r := range strings.ToLower(raw) {
		valid := r >= 'a' && r <= 'z' || r >= '0' && r <= '9'
		if valid {
			b.WriteRune(r)
			prevDash = false
		} else if !prevDash {
			b.WriteByte('-')
			prevDash = true
		}
	}

	name := strings.TrimRight(b.String(), "-")
	if len(name) > maxNameLength {
		name = strings.TrimRight(name[:maxNameLength], "-")
	}
	return name
}
