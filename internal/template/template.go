// Package template renders the request bodies, policy documents and Helm
// values the provisioning steps send downstream. Templates are embedded at
// build time and use text/template with the sprig function map.
package template

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	texttemplate "text/template"

	"github.com/Masterminds/sprig/v3"
)

// Template names.
const (
	StoragePolicy      = "s3-policy.json"
	AssetRequestFilter = "asset-request-filter.json"
	Asset              = "asset.json"
	Policy             = "policy.json"
	ContractDefinition = "contract-definition.json"
	EDCConnectorValues = "values/edc-connector.yaml"
	DTRegistryValues   = "values/dt-registry.yaml"
)

//go:embed templates
var templatesFS embed.FS

var registry = mustLoad()

func mustLoad() map[string]*texttemplate.Template {
	out := make(map[string]*texttemplate.Template)
	err := fs.WalkDir(templatesFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".tmpl") {
			return err
		}
		content, err := templatesFS.ReadFile(path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(strings.TrimPrefix(path, "templates/"), ".tmpl")
		tmpl, err := texttemplate.New(name).
			Funcs(sprig.TxtFuncMap()).
			Option("missingkey=zero").
			Parse(string(content))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", name, err)
		}
		out[name] = tmpl
		return nil
	})
	if err != nil {
		panic(err)
	}
	return out
}

// Render executes the named template against values.
func Render(name string, values map[string]string) ([]byte, error) {
	tmpl, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, values); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Names lists every embedded template.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}
