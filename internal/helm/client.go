package helm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/getter"
	"helm.sh/helm/v3/pkg/repo"
	"helm.sh/helm/v3/pkg/storage/driver"
)

const (
	installTimeout   = 10 * time.Minute
	uninstallTimeout = 5 * time.Minute
)

// Client implements Manager with the Helm SDK.
type Client struct {
	kubeconfig []byte
	charts     map[Category]Chart
	logger     zerolog.Logger

	mu      sync.Mutex
	configs map[string]*action.Configuration
}

var _ Manager = (*Client)(nil)

// NewClient creates a Client. An empty kubeconfig selects in-cluster config.
func NewClient(kubeconfig []byte, charts map[Category]Chart, logger zerolog.Logger) *Client {
	return &Client{
		kubeconfig: kubeconfig,
		charts:     charts,
		logger:     logger.With().Str("component", "helm").Logger(),
		configs:    make(map[string]*action.Configuration),
	}
}

// CreatePackage installs the package, upgrading it if the release already
// exists so a retried create converges.
func (c *Client) CreatePackage(ctx context.Context, category Category, packageName string, params map[string]string) error {
	return c.apply(ctx, category, packageName, params, false)
}

// UpdatePackage upgrades the package, installing it if the release is gone.
func (c *Client) UpdatePackage(ctx context.Context, category Category, packageName string, params map[string]string) error {
	return c.apply(ctx, category, packageName, params, true)
}

// DeletePackage uninstalls the package. A missing release is not an error.
func (c *Client) DeletePackage(ctx context.Context, category Category, packageName string, params map[string]string) error {
	name := ReleaseName(category, packageName)
	ns := Namespace(params)
	cfg, err := c.actionConfig(ns)
	if err != nil {
		return err
	}

	uninstall := action.NewUninstall(cfg)
	uninstall.Wait = true
	uninstall.IgnoreNotFound = true
	uninstall.Timeout = uninstallTimeout
	if _, err := uninstall.Run(name); err != nil && !errors.Is(err, driver.ErrReleaseNotFound) {
		return fmt.Errorf("uninstall %s/%s: %w", ns, name, err)
	}
	c.logger.Info().Str("release", name).Str("namespace", ns).Msg("package removed")
	return nil
}

func (c *Client) apply(ctx context.Context, category Category, packageName string, params map[string]string, update bool) error {
	spec, ok := c.charts[category]
	if !ok {
		return fmt.Errorf("no chart configured for %s", category)
	}
	name := ReleaseName(category, packageName)
	ns := Namespace(params)

	values, err := RenderValues(category, name, params)
	if err != nil {
		return err
	}
	cfg, err := c.actionConfig(ns)
	if err != nil {
		return err
	}
	exists, err := releaseExists(cfg, name)
	if err != nil {
		return err
	}

	ch, err := loadChart(spec)
	if err != nil {
		return err
	}

	log := c.logger.Info().Str("release", name).Str("namespace", ns).Str("chart", spec.Name)
	if exists {
		upgrade := action.NewUpgrade(cfg)
		upgrade.Namespace = ns
		upgrade.Version = spec.Version
		upgrade.Wait = true
		upgrade.Timeout = installTimeout
		if _, err := upgrade.RunWithContext(ctx, name, ch, values); err != nil {
			return fmt.Errorf("upgrade %s/%s: %w", ns, name, err)
		}
		log.Bool("requested_update", update).Msg("package upgraded")
		return nil
	}

	install := action.NewInstall(cfg)
	install.ReleaseName = name
	install.Namespace = ns
	install.CreateNamespace = true
	install.Version = spec.Version
	install.Wait = true
	install.Timeout = installTimeout
	if _, err := install.RunWithContext(ctx, ch, values); err != nil {
		return fmt.Errorf("install %s/%s: %w", ns, name, err)
	}
	log.Bool("requested_update", update).Msg("package installed")
	return nil
}

func (c *Client) actionConfig(namespace string) (*action.Configuration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cfg, ok := c.configs[namespace]; ok {
		return cfg, nil
	}
	cfg := new(action.Configuration)
	debug := func(format string, v ...interface{}) {
		c.logger.Debug().Msgf(format, v...)
	}
	if err := cfg.Init(newRESTClientGetter(c.kubeconfig, namespace), namespace, "secret", debug); err != nil {
		return nil, fmt.Errorf("init helm for namespace %s: %w", namespace, err)
	}
	c.configs[namespace] = cfg
	return cfg, nil
}

func releaseExists(cfg *action.Configuration, name string) (bool, error) {
	history := action.NewHistory(cfg)
	history.Max = 1
	if _, err := history.Run(name); err != nil {
		if errors.Is(err, driver.ErrReleaseNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("release history %s: %w", name, err)
	}
	return true, nil
}

func loadChart(spec Chart) (*chart.Chart, error) {
	providers := getter.All(cli.New())
	chartURL, err := repo.FindChartInRepoURL(spec.RepoURL, spec.Name, spec.Version, "", "", "", providers)
	if err != nil {
		return nil, fmt.Errorf("find chart %s in %s: %w", spec.Name, spec.RepoURL, err)
	}

	u, err := url.Parse(chartURL)
	if err != nil {
		return nil, fmt.Errorf("parse chart url %s: %w", chartURL, err)
	}
	g, err := providers.ByScheme(u.Scheme)
	if err != nil {
		return nil, err
	}
	archive, err := g.Get(chartURL)
	if err != nil {
		return nil, fmt.Errorf("download chart %s: %w", chartURL, err)
	}

	ch, err := loader.LoadArchive(archive)
	if err != nil {
		return nil, fmt.Errorf("load chart %s: %w", spec.Name, err)
	}
	return ch, nil
}
