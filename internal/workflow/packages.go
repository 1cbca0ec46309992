package workflow

import (
	"strings"

	"go.temporal.io/sdk/workflow"

	"github.com/edvin/autosetup/internal/activity"
	"github.com/edvin/autosetup/internal/helm"
	"github.com/edvin/autosetup/internal/model"
)

// Connector API key header and registry database defaults.
const (
	edcAPIKeyHeader     = "X-Api-Key"
	edcAPIKeyLength     = 32
	registryDatabase    = "registry"
	registryDBUser      = "catenax"
	registryDBPassBytes = 24
)

var connectorContract = model.StepContract{
	Name:     StepEDCConnector,
	Requires: []string{model.KeyDNSName, model.KeyDNSNameURLProtocol},
	Produces: []string{
		model.KeyControlPlaneEndpoint,
		model.KeyControlPlaneDataEndpoint,
		model.KeyDataPlanePublicEndpoint,
		model.KeyEDCAPIKey,
		model.KeyEDCAPIKeyValue,
	},
}

var registryContract = model.StepContract{
	Name:     StepDTRegistry,
	Requires: []string{model.KeyDNSName, model.KeyDNSNameURLProtocol},
	Produces: []string{
		model.KeyRegistryURL,
		model.KeyRegistryDatabase,
		model.KeyRegistryDBUser,
		model.KeyRegistryDBPass,
		model.KeyIDPClientID,
		model.KeyIDPIssuerURI,
		model.KeyRegistryTenantID,
		model.KeyRegistryURLPrefix,
	},
}

// baseURL joins a protocol and host the way every derived endpoint uses them.
func baseURL(protocol, dnsName string) string {
	return protocol + "://" + dnsName
}

// connectorEndpoints derives the connector URLs from the tenant host.
func connectorEndpoints(protocol, dnsName string) map[string]string {
	base := baseURL(protocol, dnsName)
	return map[string]string{
		model.KeyControlPlaneEndpoint:     base + "/api/v1/dsp",
		model.KeyControlPlaneDataEndpoint: base + "/management",
		model.KeyDataPlanePublicEndpoint:  base + "/api/public",
		model.KeyEDCAPIKey:                edcAPIKeyHeader,
	}
}

// registryURL is <protocol>://<dnsName>/<prefix>/<apiVersion>.
func registryURL(protocol, dnsName string, rs model.RegistrySettings) string {
	parts := []string{baseURL(protocol, dnsName)}
	for _, p := range []string{rs.URLPrefix, rs.APIVersion} {
		if p = strings.Trim(p, "/"); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "/")
}

// registryInputs returns the fixed registry package parameters. The
// database password is supplied by the caller.
func registryInputs(protocol, dnsName, dbPass string, rs model.RegistrySettings) map[string]string {
	return map[string]string{
		model.KeyRegistryURL:       registryURL(protocol, dnsName, rs),
		model.KeyRegistryDatabase:  registryDatabase,
		model.KeyRegistryDBUser:    registryDBUser,
		model.KeyRegistryDBPass:    dbPass,
		model.KeyIDPClientID:       rs.IDPClientID,
		model.KeyIDPIssuerURI:      rs.IDPIssuerURI,
		model.KeyRegistryTenantID:  rs.TenantID,
		model.KeyRegistryURLPrefix: rs.URLPrefix,
	}
}

// packageParams is the tenant context plus the identity fields the
// package manager needs to place the release.
func (r *run) packageParams() map[string]string {
	params := r.tc.Clone()
	params[helm.ParamTenantNamespace] = r.trigger.TenantNamespace
	if params[helm.ParamTargetNamespace] == "" {
		params[helm.ParamTargetNamespace] = r.trigger.TenantNamespace
	}
	params["organizationName"] = r.tenant.OrganizationName
	return params
}

func (r *run) applyPackage(ctx workflow.Context, category helm.Category) error {
	return workflow.ExecuteActivity(ctx, "ManagePackage", activity.ManagePackageParams{
		Category:    category,
		PackageName: r.tool.Label,
		Action:      r.action,
		Params:      r.packageParams(),
	}).Get(ctx, nil)
}

// connectorStep installs or upgrades the tenant connector. An API key
// already in the context is kept so UPDATE does not rotate it.
func (r *run) connectorStep() step {
	return r.retried(connectorContract, func(ctx workflow.Context) error {
		if r.tc[model.KeyEDCAPIKeyValue] == "" {
			r.tc[model.KeyEDCAPIKeyValue] = newSecret(ctx, edcAPIKeyLength)
		}
		r.tc.Merge(connectorEndpoints(r.tc[model.KeyDNSNameURLProtocol], r.tc[model.KeyDNSName]))
		return r.applyPackage(ctx, helm.CategoryEDCConnector)
	})
}

// registryStep installs or upgrades the digital twin registry.
func (r *run) registryStep() step {
	return r.retried(registryContract, func(ctx workflow.Context) error {
		pass := r.tc[model.KeyRegistryDBPass]
		if pass == "" {
			pass = newSecret(ctx, registryDBPassBytes)
		}
		r.tc.Merge(registryInputs(r.tc[model.KeyDNSNameURLProtocol], r.tc[model.KeyDNSName], pass, r.settings.Registry))
		return r.applyPackage(ctx, helm.CategoryDTRegistry)
	})
}

// deletePackageStep removes one package release.
func (r *run) deletePackageStep(name string, category helm.Category) teardownStep {
	return teardownStep{
		name:     name,
		activity: "DeletePackage",
		params: activity.ManagePackageParams{
			Category:    category,
			PackageName: r.tool.Label,
			Action:      model.ActionDelete,
			Params:      r.packageParams(),
		},
	}
}
