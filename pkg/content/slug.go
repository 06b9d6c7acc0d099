package content

import "strings"

// Slugify derives the URL-safe slug for a title.
//
// The algorithm is normative and must stay byte-for-byte stable across
// versions, because slugs are both addresses and link targets: lowercase
// the title, collapse every run of non-alphanumeric characters to a single
// '-', and trim leading/trailing dashes.
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}

	return b.String()
}

// ValidSlug reports whether s is a well-formed slug: non-empty, lowercase
// alphanumeric runs separated by single dashes.
func ValidSlug(s string) bool {
	return s != "" && s == Slugify(s)
}
