package dump

import "strings"

const specialChars = `?*:"<>\/|`

// SanitizeFileName replaces characters that are illegal in file names with
// a dash and strips ASCII control characters. It must be applied to the
// assembled file name, not to its parts, so that concatenation cannot
// reintroduce stray separators.
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r < 0x20:
			// drop control characters
		case strings.ContainsRune(specialChars, r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
