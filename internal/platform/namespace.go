package platform

import "strings"

const maxSlugLength = 40

// TenantNamespace derives the tenant namespace from an organisation name:
// a DNS-label slug of the name plus a short random suffix. The result is
// also used as the bucket and policy name, so it stays within the
// S3 bucket naming rules.
func TenantNamespace(organizationName string) string {
	slug := Slug(organizationName)
	if slug == "" {
		slug = "tenant"
	}
	return slug + "-" + NewShortID()
}

// Slug lowercases s and collapses every run of characters outside
// [a-z0-9] into a single hyphen.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if len(out) > maxSlugLength {
		out = strings.TrimSuffix(out[:maxSlugLength], "-")
	}
	return out
}
