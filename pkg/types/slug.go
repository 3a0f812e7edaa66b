// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// MaxSlugLength caps the length of derived slugs.
const MaxSlugLength = 80

// Slugify derives a URL-safe slug from a title. It lowercases the title,
// collapses every run of characters outside [a-z0-9] into a single hyphen,
// trims leading and trailing hyphens, and caps the result at MaxSlugLength.
// A hyphen exposed by the cap is trimmed as well, so the slug never starts
// or ends with a separator.
func Slugify(title string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}

	slug := b.String()
	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}
	return slug
}
