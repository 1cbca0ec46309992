package model

import "time"

// AutoSetupSettings is the immutable per-run configuration handed to the
// orchestrator workflow. It is captured when the run starts so that a
// configuration change never alters a run already in flight.
type AutoSetupSettings struct {
	StorageMediaEnabled bool `json:"storage_media_enabled"`
	RegistryEnabled     bool `json:"registry_enabled"`
	PortalEnabled       bool `json:"portal_enabled"`

	Retry          RetrySettings    `json:"retry"`
	EDCSettleDelay time.Duration    `json:"edc_settle_delay"`
	PortalPoll     PollSettings     `json:"portal_poll"`
	Registry       RegistrySettings `json:"registry"`

	StorageEndpoint string `json:"storage_endpoint"`
}

// RetrySettings parameterises the step retry policy.
type RetrySettings struct {
	MaxAttempts int           `json:"max_attempts"`
	Delay       time.Duration `json:"delay"`
	Multiplier  float64       `json:"multiplier"`
	MaxDelay    time.Duration `json:"max_delay"`
}

// PollSettings bounds an asynchronous status poll.
type PollSettings struct {
	Attempts int           `json:"attempts"`
	Interval time.Duration `json:"interval"`
}

// RegistrySettings holds the fixed parameters injected into the registry package.
type RegistrySettings struct {
	URLPrefix    string `json:"url_prefix"`
	APIVersion   string `json:"api_version"`
	IDPClientID  string `json:"idp_client_id"`
	IDPIssuerURI string `json:"idp_issuer_uri"`
	TenantID     string `json:"tenant_id"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() AutoSetupSettings {
	return AutoSetupSettings{
		StorageMediaEnabled: true,
		RegistryEnabled:     true,
		PortalEnabled:       true,
		Retry: RetrySettings{
			MaxAttempts: 5,
			Delay:       2 * time.Second,
			Multiplier:  2,
			MaxDelay:    time.Minute,
		},
		EDCSettleDelay: 30 * time.Second,
		PortalPoll: PollSettings{
			Attempts: 5,
			Interval: 20 * time.Second,
		},
		Registry: RegistrySettings{
			URLPrefix:  "semantics/registry",
			APIVersion: "api/v3.0",
		},
	}
}
