package model

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Context keys shared between steps. Inputs are supplied by the caller;
// everything else is written by the step that declares it in Produces.
const (
	KeyDNSName            = "dnsName"
	KeyDNSNameURLProtocol = "dnsNameURLProtocol"
	KeyTargetNamespace    = "targetNamespace"
	KeySubscriptionID     = "subscriptionId"
	KeyServiceID          = "serviceId"

	KeyStorageBucket    = "storage.media.bucket"
	KeyStorageEndpoint  = "storage.media.endpoint"
	KeyStorageAccessKey = "storage.media.accessKey"
	KeyStorageSecretKey = "storage.media.secretKey"

	KeyControlPlaneEndpoint     = "controlPlaneEndpoint"
	KeyControlPlaneDataEndpoint = "controlPlaneDataEndpoint"
	KeyDataPlanePublicEndpoint  = "dataPlanePublicEndpoint"
	KeyEDCAPIKey                = "edcApiKey"
	KeyEDCAPIKeyValue           = "edcApiKeyValue"

	KeyRegistryURL       = "registryUrl"
	KeyRegistryDatabase  = "rgdatabase"
	KeyRegistryDBUser    = "rgusername"
	KeyRegistryDBPass    = "rgdbpass"
	KeyIDPClientID       = "idpClientId"
	KeyIDPIssuerURI      = "idpIssuerUri"
	KeyRegistryTenantID  = "tenantId"
	KeyRegistryURLPrefix = "dtregistryUrlPrefix"

	KeyAssetID          = "assetId"
	KeyPolicyID         = "policyId"
	KeyContractPolicyID = "contractPolicyId"
	KeyCreatedDate      = "createdDate"
	KeyUpdateDate       = "updateDate"

	KeyApplicationURL    = "applicationURL"
	KeyTechnicalClientID = "keycloakAuthenticationClientId"
	KeyTechnicalSecret   = "keycloakAuthenticationClientSecret"
	KeyResourceClientID  = "keycloakResourceClient"
)

// TenantContext accumulates string values across a workflow run. Steps
// mutate it in place; it is never reset mid-run.
type TenantContext map[string]string

// Clone returns an independent copy.
func (c TenantContext) Clone() TenantContext {
	out := make(TenantContext, len(c))
	maps.Copy(out, c)
	return out
}

// Merge copies every key of other into c, overwriting existing values.
func (c TenantContext) Merge(other map[string]string) {
	maps.Copy(c, other)
}

// Require returns a *MissingKeysError naming every key that is absent or empty.
func (c TenantContext) Require(keys ...string) error {
	var missing []string
	for _, k := range keys {
		if c[k] == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return &MissingKeysError{Keys: missing}
	}
	return nil
}

// MissingKeysError reports context keys a step needed but did not find.
type MissingKeysError struct {
	Step string
	Keys []string
}

func (e *MissingKeysError) Error() string {
	if e.Step == "" {
		return fmt.Sprintf("missing context keys: %s", strings.Join(e.Keys, ", "))
	}
	return fmt.Sprintf("step %s: missing context keys: %s", e.Step, strings.Join(e.Keys, ", "))
}

// StepContract declares the context keys a step reads and writes.
type StepContract struct {
	Name     string
	Requires []string
	Produces []string
}

// ValidateSequence checks that every key a step requires is either present
// in the initial context or produced by an earlier step.
func ValidateSequence(initial TenantContext, steps []StepContract) error {
	available := make(map[string]bool, len(initial))
	for k, v := range initial {
		if v != "" {
			available[k] = true
		}
	}

	for _, s := range steps {
		var missing []string
		for _, k := range s.Requires {
			if !available[k] {
				missing = append(missing, k)
			}
		}
		if len(missing) > 0 {
			slices.Sort(missing)
			return &MissingKeysError{Step: s.Name, Keys: missing}
		}
		for _, k := range s.Produces {
			available[k] = true
		}
	}
	return nil
}
