package workflow

import (
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/edvin/autosetup/internal/activity"
	"github.com/edvin/autosetup/internal/model"
	"github.com/edvin/autosetup/internal/retry"
)

// AutoSetupParams is the input of one orchestrator run.
type AutoSetupParams struct {
	Trigger  model.TriggerEntry      `json:"trigger"`
	Tenant   model.Tenant            `json:"tenant"`
	Tool     model.SelectedTool      `json:"tool"`
	Action   model.WorkflowAction    `json:"action"`
	Context  model.TenantContext     `json:"context"`
	Settings model.AutoSetupSettings `json:"settings"`
}

// AutoSetupWorkflow provisions or tears down the resources of one tenant.
//
// CREATE and UPDATE run the declared step sequence and stop at the first
// step that exhausts its retries; the run then fails with a non-retryable
// TerminalWorkflowError whose details carry the failed step. DELETE runs
// every removal regardless of earlier failures and always completes.
//
// The trigger entry is moved to IN_PROGRESS at the start and to SUCCESS or
// FAILED with the resulting context at the end. When the entry has a
// callback URL the outcome is posted to it.
func AutoSetupWorkflow(ctx workflow.Context, params AutoSetupParams) (model.TenantContext, error) {
	logger := workflow.GetLogger(ctx)
	r := &run{
		trigger:  params.Trigger,
		tenant:   params.Tenant,
		tool:     params.Tool,
		action:   params.Action,
		settings: params.Settings,
		tc:       params.Context.Clone(),
	}

	if err := setEntryStatus(ctx, r.trigger.ID, model.StatusInProgress, nil, nil); err != nil {
		return nil, err
	}

	var (
		runErr error
		remark string
	)
	switch r.action {
	case model.ActionCreate, model.ActionUpdate:
		runErr = r.runSequence(ctx, r.provisionSequence())
	case model.ActionDelete:
		if failed := r.teardown(ctx); len(failed) > 0 {
			remark = "teardown incomplete: " + strings.Join(failed, ", ")
		}
	default:
		runErr = r.failStep(ctx, "VALIDATE", retry.Precondition("unknown workflow action "+string(r.action), nil))
	}

	status := model.StatusSuccess
	if runErr != nil {
		status = model.StatusFailed
		remark = retry.Remark(runErr)
		if se, ok := runErr.(*SetupError); ok {
			remark = se.Error()
		}
	}
	var remarkPtr *string
	if remark != "" {
		remarkPtr = &remark
	}
	if err := setEntryStatus(ctx, r.trigger.ID, status, remarkPtr, r.tc); err != nil {
		logger.Error("failed to persist trigger entry status", "trigger", r.trigger.ID, "status", status, "error", err)
	}

	if r.trigger.CallbackURL != "" {
		fireCallback(ctx, r.trigger, status, remark)
	}

	if runErr != nil {
		var details interface{}
		if se, ok := runErr.(*SetupError); ok {
			details = *se
		}
		return nil, temporal.NewNonRetryableApplicationError(remark, retry.TypeTerminal, runErr, details)
	}
	return r.tc, nil
}

// provisionSequence declares the CREATE/UPDATE steps in execution order.
func (r *run) provisionSequence() []step {
	var steps []step
	if r.settings.StorageMediaEnabled {
		steps = append(steps, r.storageMediaStep())
	}
	steps = append(steps, r.connectorStep())
	if r.settings.RegistryEnabled {
		steps = append(steps, r.registryStep(), r.edcRegistrationStep())
	}
	if r.settings.PortalEnabled {
		steps = append(steps, r.portalStep())
	}
	return steps
}

// fireCallback posts the run outcome to the trigger's callback URL. It is
// best effort: a failed callback is logged and never changes the outcome.
func fireCallback(ctx workflow.Context, trigger model.TriggerEntry, status, remark string) {
	callbackCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:    10,
			InitialInterval:    5 * time.Second,
			MaximumInterval:    5 * time.Minute,
			BackoffCoefficient: 2.0,
		},
	})

	err := workflow.ExecuteActivity(callbackCtx, "SendCallback", activity.SendCallbackParams{
		URL: trigger.CallbackURL,
		Payload: model.CallbackPayload{
			TriggerID:       trigger.ID,
			TenantNamespace: trigger.TenantNamespace,
			Action:          trigger.Action,
			Status:          status,
			Remark:          remark,
		},
	}).Get(ctx, nil)
	if err != nil {
		workflow.GetLogger(ctx).Error("callback failed",
			"url", trigger.CallbackURL,
			"trigger", trigger.ID,
			"error", err)
	}
}
