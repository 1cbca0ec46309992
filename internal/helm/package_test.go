package helm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReleaseName(t *testing.T) {
	assert.Equal(t, "registry-dtregistry", ReleaseName(CategoryDTRegistry, "registry"))
	assert.Equal(t, "sde-connector-edc", ReleaseName(CategoryEDCConnector, "SDE Connector"))
	assert.Equal(t, "tenant-edc", ReleaseName(CategoryEDCConnector, "***"))

	long := ReleaseName(CategoryDTRegistry, strings.Repeat("x", 80))
	assert.LessOrEqual(t, len(long), 53)
	assert.True(t, strings.HasSuffix(long, "-dtregistry"))
}

func TestNamespace(t *testing.T) {
	assert.Equal(t, "tenants", Namespace(map[string]string{ParamTargetNamespace: "tenants", ParamTenantNamespace: "acme-1"}))
	assert.Equal(t, "acme-1", Namespace(map[string]string{ParamTenantNamespace: "acme-1"}))
	assert.Equal(t, "default", Namespace(nil))
}

func TestRenderValues_Registry(t *testing.T) {
	values, err := RenderValues(CategoryDTRegistry, "registry-dtregistry", map[string]string{
		"dnsName":             "acme.example.com",
		"dnsNameURLProtocol":  "https",
		"dtregistryUrlPrefix": "semantics/registry",
		"rgdatabase":          "registry",
		"rgusername":          "catenax",
		"rgdbpass":            "pw",
		"idpIssuerUri":        "https://idp.example.com/realms/x",
	})
	require.NoError(t, err)

	assert.Equal(t, "registry-dtregistry", values["fullnameOverride"])
	pg := values["postgresql"].(map[string]any)["auth"].(map[string]any)
	assert.Equal(t, "catenax", pg["username"])
	reg := values["registry"].(map[string]any)
	assert.Equal(t, "https://idp.example.com/realms/x", reg["idpIssuerUri"])
}

func TestRenderValues_UnknownCategory(t *testing.T) {
	_, err := RenderValues(Category("BOGUS"), "x", nil)
	assert.ErrorContains(t, err, `unknown package category "BOGUS"`)
}
