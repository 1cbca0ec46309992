package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantContext_Require(t *testing.T) {
	c := TenantContext{KeyDNSName: "acme.example.com", KeyDNSNameURLProtocol: ""}

	require.NoError(t, c.Require(KeyDNSName))

	err := c.Require(KeyDNSName, KeyDNSNameURLProtocol, KeySubscriptionID)
	var missing *MissingKeysError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{KeyDNSNameURLProtocol, KeySubscriptionID}, missing.Keys)
	assert.Contains(t, err.Error(), "dnsNameURLProtocol")
}

func TestTenantContext_CloneIsIndependent(t *testing.T) {
	c := TenantContext{"a": "1"}
	clone := c.Clone()
	clone["a"] = "2"
	clone["b"] = "3"

	assert.Equal(t, "1", c["a"])
	assert.NotContains(t, c, "b")
}

func TestTenantContext_MergeOverwrites(t *testing.T) {
	c := TenantContext{"a": "1", "b": "2"}
	c.Merge(map[string]string{"b": "20", "c": "30"})

	assert.Equal(t, TenantContext{"a": "1", "b": "20", "c": "30"}, c)
}

func TestValidateSequence(t *testing.T) {
	steps := []StepContract{
		{Name: "EDC_CONNECTOR", Requires: []string{KeyDNSName}, Produces: []string{KeyEDCAPIKey}},
		{Name: "DT_EDC_REGISTRATION", Requires: []string{KeyEDCAPIKey, KeyRegistryURL}},
	}

	err := ValidateSequence(TenantContext{KeyDNSName: "x"}, steps)
	var missing *MissingKeysError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "DT_EDC_REGISTRATION", missing.Step)
	assert.Equal(t, []string{KeyRegistryURL}, missing.Keys)

	steps[0].Produces = append(steps[0].Produces, KeyRegistryURL)
	assert.NoError(t, ValidateSequence(TenantContext{KeyDNSName: "x"}, steps))
}

func TestValidateSequence_EmptyInitialValueDoesNotCount(t *testing.T) {
	steps := []StepContract{{Name: "EDC_CONNECTOR", Requires: []string{KeyDNSName}}}
	assert.Error(t, ValidateSequence(TenantContext{KeyDNSName: ""}, steps))
}

func TestWorkflowAction_Valid(t *testing.T) {
	assert.True(t, ActionCreate.Valid())
	assert.True(t, ActionDelete.Valid())
	assert.False(t, WorkflowAction("PATCH").Valid())
}

func TestSelectedTool_IsApp(t *testing.T) {
	assert.True(t, SelectedTool{Type: "APP"}.IsApp())
	assert.False(t, SelectedTool{Type: ToolTypeService}.IsApp())
}
