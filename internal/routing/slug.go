// internal/routing/slug.go
//
// Slug and path helpers for page routes.
//
// • MakeSlug(title) ─ converts arbitrary text into a URL-safe slug restricted
//   to ASCII a-z, 0-9 and “-”.
// • IsSlug(s) ─ reports whether s is already canonical.  The /pages/{page}
//   route 404s anything else, so cache keys and template names can only
//   be built from canonical slugs.
// • BuildPath(parent, slug) ─ joins parent path + slug with a single “/” and
//   guarantees exactly one leading slash.
//
// Rules (MakeSlug)
// ----------------
// 1. Lower-case everything.
// 2. Convert any run of non-[a-z0-9] characters to one “-”.  That strips
//    spaces, punctuation, dots, slashes, and non-ASCII.
// 3. Trim leading / trailing “-”.
// 4. If the result is empty, return "item".
// 5. Cut at MaxSlugLen bytes, then trim a trailing “-” again.

package routing

import (
	"strings"
)

// MaxSlugLen bounds slug length, and therefore cache key length.
const MaxSlugLen = 100

// MakeSlug converts title → lower-kebab ASCII.
func MakeSlug(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastWasDash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasDash = false
		default:
			if !lastWasDash {
				b.WriteRune('-')
				lastWasDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "item"
	}
	if len(slug) > MaxSlugLen {
		slug = strings.TrimRight(slug[:MaxSlugLen], "-")
	}
	return slug
}

// IsSlug reports whether s is non-empty and already in MakeSlug form.
func IsSlug(s string) bool {
	return s != "" && MakeSlug(s) == s
}

// BuildPath joins parent + slug ensuring exactly one leading slash and no
// duplicate separators.
func BuildPath(parent, slug string) string {
	parent = strings.Trim(parent, "/")
	slug = strings.Trim(slug, "/")

	switch {
	case parent == "" && slug == "":
		return "/"
	case parent == "":
		return "/" + slug
	case slug == "":
		return "/" + parent
	default:
		return "/" + parent + "/" + slug
	}
}
