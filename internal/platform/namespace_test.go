package platform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Acme Corp", "acme-corp"},
		{"  Müller & Söhne GmbH ", "m-ller-s-hne-gmbh"},
		{"ACME--Industries!!", "acme-industries"},
		{"???", ""},
		{strings.Repeat("a", 60), strings.Repeat("a", 40)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.in), "in=%q", tt.in)
	}
}

func TestTenantNamespace(t *testing.T) {
	assert.Regexp(t, `^acme-corp-[a-z0-9]{6}$`, TenantNamespace("Acme Corp"))
	assert.Regexp(t, `^tenant-[a-z0-9]{6}$`, TenantNamespace("***"))
	assert.NotEqual(t, TenantNamespace("Acme"), TenantNamespace("Acme"))
}
