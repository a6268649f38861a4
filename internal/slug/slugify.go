package slug

import (
	"strconv"
	"strings"
)

const (
	// maxSlugLength caps the derived base slug. Collision suffixes may
	// extend past it.
	maxSlugLength = 50

	// Placeholder is used when a hint yields no usable characters.
	Placeholder = "unnamed"
)

// apostrophes are removed outright so "Kid's Room" becomes "kids-room".
var apostrophes = strings.NewReplacer("'", "", "’", "")

// Slugify derives a base slug from a display name.
//
// The name is lower-cased, apostrophes are removed, every run of
// characters outside [a-z0-9] collapses to a single hyphen, and leading
// and trailing hyphens are trimmed. The result is truncated to 50
// characters (re-trimming a trailing hyphen) and falls back to
// Placeholder when empty.
func Slugify(name string) string {
	name = apostrophes.Replace(strings.ToLower(name))

	var b strings.Builder
	b.Grow(len(name))
	pendingHyphen := false
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	slug := b.String()
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	if slug == "" {
		return Placeholder
	}
	return slug
}

// withSuffix returns base for n == 1, otherwise base-n.
func withSuffix(base string, n int) string {
	if n <= 1 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}
