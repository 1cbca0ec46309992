package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/edvin/autosetup/internal/model"
)

// Binary roles accepted by Validate.
const (
	RoleCoreAPI = "core-api"
	RoleWorker  = "worker"
)

type Config struct {
	DatabaseURL     string
	TemporalAddress string
	HTTPListenAddr  string
	MetricsAddr     string
	LogLevel        string
	ServiceName     string
	Environment     string
	APIKey          string

	// Temporal mTLS
	TemporalTLSCert       string
	TemporalTLSKey        string
	TemporalTLSCACert     string
	TemporalTLSServerName string

	StorageMediaEnabled bool
	MinIOEndpoint       string
	MinIOAccessKey      string
	MinIOSecretKey      string
	MinIORegion         string
	MinIOUseSSL         bool
	StorageEndpoint     string

	RetryMaxAttempts int
	RetryDelay       time.Duration
	RetryMultiplier  float64
	RetryMaxDelay    time.Duration
	EDCSettleDelay   time.Duration

	PortalEnabled      bool
	PortalURL          string
	PortalClientID     string
	PortalClientSecret string
	PortalTokenURL     string
	PortalPollAttempts int
	PortalPollInterval time.Duration

	RegistryEnabled      bool
	RegistryURLPrefix    string
	RegistryAPIURI       string
	RegistryIDPClientID  string
	ResourceServerIssuer string
	RegistryTenantID     string

	Kubeconfig      string
	EDCChartRepo    string
	EDCChartName    string
	EDCChartVersion string
	DTChartRepo     string
	DTChartName     string
	DTChartVersion  string
}

func Load() (*Config, error) {
	def := model.DefaultSettings()
	var errs []error

	cfg := &Config{
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		TemporalAddress: getEnv("TEMPORAL_ADDRESS", "localhost:7233"),
		HTTPListenAddr:  getEnv("HTTP_LISTEN_ADDR", ":8090"),
		MetricsAddr:     getEnv("METRICS_ADDR", ":9090"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ServiceName:     getEnv("SERVICE_NAME", ""),
		Environment:     getEnv("ENVIRONMENT", ""),
		APIKey:          getEnv("API_KEY", ""),

		TemporalTLSCert:       getEnv("TEMPORAL_TLS_CERT", ""),
		TemporalTLSKey:        getEnv("TEMPORAL_TLS_KEY", ""),
		TemporalTLSCACert:     getEnv("TEMPORAL_TLS_CA_CERT", ""),
		TemporalTLSServerName: getEnv("TEMPORAL_TLS_SERVER_NAME", ""),

		MinIOEndpoint:   getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:  getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:  getEnv("MINIO_SECRET_KEY", ""),
		MinIORegion:     getEnv("MINIO_REGION", "us-east-1"),
		StorageEndpoint: getEnv("STORAGE_MEDIA_ENDPOINT", ""),

		PortalURL:          getEnv("PORTAL_URL", ""),
		PortalClientID:     getEnv("PORTAL_CLIENT_ID", ""),
		PortalClientSecret: getEnv("PORTAL_CLIENT_SECRET", ""),
		PortalTokenURL:     getEnv("PORTAL_TOKEN_URL", ""),

		RegistryURLPrefix:    getEnv("DTREGISTRY_URL_PREFIX", def.Registry.URLPrefix),
		RegistryAPIURI:       getEnv("DTREGISTRY_API_URI", def.Registry.APIVersion),
		RegistryIDPClientID:  getEnv("DTREGISTRY_IDP_CLIENT_ID", ""),
		ResourceServerIssuer: getEnv("RESOURCE_SERVER_ISSUER", ""),
		RegistryTenantID:     getEnv("DTREGISTRY_TENANT_ID", ""),

		Kubeconfig:      getEnv("KUBECONFIG", ""),
		EDCChartRepo:    getEnv("EDC_CHART_REPO", ""),
		EDCChartName:    getEnv("EDC_CHART_NAME", "tractusx-connector"),
		EDCChartVersion: getEnv("EDC_CHART_VERSION", ""),
		DTChartRepo:     getEnv("DT_CHART_REPO", ""),
		DTChartName:     getEnv("DT_CHART_NAME", "digital-twin-registry"),
		DTChartVersion:  getEnv("DT_CHART_VERSION", ""),
	}

	cfg.StorageMediaEnabled = getBool("STORAGE_MEDIA_ENABLED", def.StorageMediaEnabled, &errs)
	cfg.MinIOUseSSL = getBool("MINIO_USE_SSL", true, &errs)
	cfg.PortalEnabled = getBool("PORTAL_ENABLED", def.PortalEnabled, &errs)
	cfg.RegistryEnabled = getBool("DT_REGISTRY_ENABLED", def.RegistryEnabled, &errs)

	cfg.RetryMaxAttempts = getInt("RETRY_MAX_ATTEMPTS", def.Retry.MaxAttempts, &errs)
	cfg.RetryDelay = getDuration("RETRY_BACKOFF_DELAY", def.Retry.Delay, &errs)
	cfg.RetryMultiplier = getFloat("RETRY_BACKOFF_MULTIPLIER", def.Retry.Multiplier, &errs)
	cfg.RetryMaxDelay = getDuration("RETRY_MAX_DELAY", def.Retry.MaxDelay, &errs)
	cfg.EDCSettleDelay = getDuration("EDC_SETTLE_DELAY", def.EDCSettleDelay, &errs)
	cfg.PortalPollAttempts = getInt("PORTAL_POLL_ATTEMPTS", def.PortalPoll.Attempts, &errs)
	cfg.PortalPollInterval = getDuration("PORTAL_POLL_INTERVAL", def.PortalPoll.Interval, &errs)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings the given binary needs are present.
func (c *Config) Validate(role string) error {
	var errs []error
	require := func(key, val string) {
		if val == "" {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}

	switch role {
	case RoleCoreAPI:
		require("DATABASE_URL", c.DatabaseURL)
		require("API_KEY", c.APIKey)
	case RoleWorker:
		require("DATABASE_URL", c.DatabaseURL)
		if c.StorageMediaEnabled {
			require("MINIO_ENDPOINT", c.MinIOEndpoint)
			require("MINIO_ACCESS_KEY", c.MinIOAccessKey)
			require("MINIO_SECRET_KEY", c.MinIOSecretKey)
		}
		if c.PortalEnabled {
			require("PORTAL_URL", c.PortalURL)
			require("PORTAL_TOKEN_URL", c.PortalTokenURL)
			require("PORTAL_CLIENT_ID", c.PortalClientID)
		}
		require("EDC_CHART_REPO", c.EDCChartRepo)
		if c.RegistryEnabled {
			require("DT_CHART_REPO", c.DTChartRepo)
		}
	default:
		return fmt.Errorf("unknown role %q", role)
	}

	require("TEMPORAL_ADDRESS", c.TemporalAddress)
	if (c.TemporalTLSCert == "") != (c.TemporalTLSKey == "") {
		errs = append(errs, errors.New("TEMPORAL_TLS_CERT and TEMPORAL_TLS_KEY must both be set"))
	}
	if c.RetryMaxAttempts < 1 {
		errs = append(errs, errors.New("RETRY_MAX_ATTEMPTS must be at least 1"))
	}
	if c.PortalPollAttempts < 1 {
		errs = append(errs, errors.New("PORTAL_POLL_ATTEMPTS must be at least 1"))
	}
	return errors.Join(errs...)
}

// AutoSetupSettings captures the per-run settings handed to each workflow.
func (c *Config) AutoSetupSettings() model.AutoSetupSettings {
	return model.AutoSetupSettings{
		StorageMediaEnabled: c.StorageMediaEnabled,
		RegistryEnabled:     c.RegistryEnabled,
		PortalEnabled:       c.PortalEnabled,
		Retry: model.RetrySettings{
			MaxAttempts: c.RetryMaxAttempts,
			Delay:       c.RetryDelay,
			Multiplier:  c.RetryMultiplier,
			MaxDelay:    c.RetryMaxDelay,
		},
		EDCSettleDelay: c.EDCSettleDelay,
		PortalPoll: model.PollSettings{
			Attempts: c.PortalPollAttempts,
			Interval: c.PortalPollInterval,
		},
		Registry: model.RegistrySettings{
			URLPrefix:    c.RegistryURLPrefix,
			APIVersion:   c.RegistryAPIURI,
			IDPClientID:  c.RegistryIDPClientID,
			IDPIssuerURI: c.ResourceServerIssuer,
			TenantID:     c.RegistryTenantID,
		},
		StorageEndpoint: c.StorageEndpoint,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}

func getInt(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64, errs *[]error) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return f
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}
