package helm

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/edvin/autosetup/internal/platform"
	"github.com/edvin/autosetup/internal/template"
)

// Category selects which package family a call targets.
type Category string

const (
	CategoryEDCConnector Category = "EDC_CONNECTOR"
	CategoryDTRegistry   Category = "DT_REGISTRY"
)

// Parameter keys read by the manager besides the template values.
const (
	ParamTenantNamespace = "tenantNamespace"
	ParamTargetNamespace = "targetNamespace"
	ParamReleaseName     = "releaseName"
)

// Chart locates a chart in a classic Helm repository.
type Chart struct {
	RepoURL string
	Name    string
	Version string
}

// Manager is the cluster package manager used by the provisioning steps.
type Manager interface {
	CreatePackage(ctx context.Context, category Category, packageName string, params map[string]string) error
	UpdatePackage(ctx context.Context, category Category, packageName string, params map[string]string) error
	DeletePackage(ctx context.Context, category Category, packageName string, params map[string]string) error
}

func (c Category) releaseSuffix() string {
	switch c {
	case CategoryEDCConnector:
		return "edc"
	case CategoryDTRegistry:
		return "dtregistry"
	}
	return strings.ToLower(string(c))
}

func (c Category) valuesTemplate() (string, error) {
	switch c {
	case CategoryEDCConnector:
		return template.EDCConnectorValues, nil
	case CategoryDTRegistry:
		return template.DTRegistryValues, nil
	}
	return "", fmt.Errorf("unknown package category %q", c)
}

// ReleaseName derives the release name from the tool label and category.
// Release names are DNS labels of at most 53 characters.
func ReleaseName(category Category, packageName string) string {
	suffix := "-" + category.releaseSuffix()
	base := platform.Slug(packageName)
	if base == "" {
		base = "tenant"
	}
	if len(base)+len(suffix) > 53 {
		base = strings.TrimSuffix(base[:53-len(suffix)], "-")
	}
	return base + suffix
}

// Namespace resolves the Kubernetes namespace for a package: an explicit
// target namespace wins over the tenant namespace.
func Namespace(params map[string]string) string {
	if ns := params[ParamTargetNamespace]; ns != "" {
		return ns
	}
	if ns := params[ParamTenantNamespace]; ns != "" {
		return platform.Slug(ns)
	}
	return "default"
}

// RenderValues renders the category's values template and decodes it.
func RenderValues(category Category, releaseName string, params map[string]string) (map[string]any, error) {
	name, err := category.valuesTemplate()
	if err != nil {
		return nil, err
	}

	data := make(map[string]string, len(params)+1)
	for k, v := range params {
		data[k] = v
	}
	data[ParamReleaseName] = releaseName

	raw, err := template.Render(name, data)
	if err != nil {
		return nil, err
	}
	values := map[string]any{}
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode %s values: %w", category, err)
	}
	return values, nil
}
