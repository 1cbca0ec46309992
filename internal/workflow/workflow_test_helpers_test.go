package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"go.temporal.io/sdk/testsuite"

	"github.com/edvin/autosetup/internal/activity"
	"github.com/edvin/autosetup/internal/model"
)

// registerActivities registers activity structs with the test workflow
// environment so that parameter and return types can be deserialized correctly
// by the Temporal test framework. In unit tests, all activities are mocked via
// OnActivity, but the framework still needs the type information.
func registerActivities(env *testsuite.TestWorkflowEnvironment) {
	env.RegisterActivity(&activity.Storage{})
	env.RegisterActivity(&activity.Packages{})
	env.RegisterActivity(&activity.EDC{})
	env.RegisterActivity(&activity.Portal{})
	env.RegisterActivity(&activity.Tracker{})
	env.RegisterActivity(&activity.Callback{})
}

// testSettings enables every feature and keeps delays short; the test
// environment skips timers anyway.
func testSettings() model.AutoSetupSettings {
	s := model.DefaultSettings()
	s.Retry = model.RetrySettings{MaxAttempts: 3, Delay: time.Second, Multiplier: 2, MaxDelay: 10 * time.Second}
	s.StorageEndpoint = "https://s3.example.com"
	s.Registry.IDPClientID = "registry-client"
	s.Registry.IDPIssuerURI = "https://idp.example.com/realms/tenant"
	s.Registry.TenantID = "tenant-1"
	return s
}

func testParams(action model.WorkflowAction) AutoSetupParams {
	return AutoSetupParams{
		Trigger: model.TriggerEntry{
			ID:               "trigger-1",
			TenantNamespace:  "acme-a1b2c3",
			OrganizationName: "Acme",
			Action:           action,
		},
		Tenant: model.Tenant{OrganizationName: "Acme", Email: "owner@acme.example.com", Country: "DE"},
		Tool:   model.SelectedTool{Tool: "sde", Label: "registry", Type: model.ToolTypeService},
		Action: action,
		Context: model.TenantContext{
			model.KeyDNSName:            "acme.example.com",
			model.KeyDNSNameURLProtocol: "https",
			model.KeySubscriptionID:     "sub-1",
			model.KeyServiceID:          "offer-1",
		},
		Settings: testSettings(),
	}
}

// stepLog collects the trigger step records a run hands to the tracker.
type stepLog struct {
	mu      sync.Mutex
	records []model.TriggerStepRecord
	updates []activity.UpdateTriggerEntryParams
}

func (l *stepLog) update(params activity.UpdateTriggerEntryParams) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.updates = append(l.updates, params)
}

// final returns the last entry update of the run.
func (l *stepLog) final() activity.UpdateTriggerEntryParams {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.updates) == 0 {
		return activity.UpdateTriggerEntryParams{}
	}
	return l.updates[len(l.updates)-1]
}

func (l *stepLog) add(rec model.TriggerStepRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
}

func (l *stepLog) byStep(step string) []model.TriggerStepRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []model.TriggerStepRecord
	for _, r := range l.records {
		if r.Step == step {
			out = append(out, r)
		}
	}
	return out
}

func (l *stepLog) steps() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.records))
	for i, r := range l.records {
		out[i] = r.Step
	}
	return out
}

// mockTracker records every step record and entry update.
func mockTracker(env *testsuite.TestWorkflowEnvironment, log *stepLog) {
	env.OnActivity("RecordTriggerStep", mock.Anything, mock.Anything).Return(
		func(_ context.Context, rec model.TriggerStepRecord) error {
			log.add(rec)
			return nil
		})
	env.OnActivity("UpdateTriggerEntry", mock.Anything, mock.Anything).Return(
		func(_ context.Context, params activity.UpdateTriggerEntryParams) error {
			log.update(params)
			return nil
		})
}
