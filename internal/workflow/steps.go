package workflow

import (
	"errors"
	"fmt"
	"time"

	"go.temporal.io/sdk/workflow"

	"github.com/edvin/autosetup/internal/model"
	"github.com/edvin/autosetup/internal/retry"
)

// Step names as they appear in trigger step records.
const (
	StepStorageMedia        = "STORAGE_MEDIA"
	StepEDCConnector        = "EDC_CONNECTOR"
	StepDTRegistry          = "DT_REGISTRY"
	StepEDCRegistration     = "DT_EDC_REGISTRATION"
	StepEDCAssetLookup      = "DT_EDC_ASSET_LOOKUP"
	StepCreateEDCAsset      = "DT_CreateEDCAsset"
	StepCreateEDCPolicy     = "DT_CreateEDCPolicy"
	StepCreateContractDef   = "DT_CreateContractDefinition"
	StepPortalActivation    = "PORTAL_ACTIVATION"
	StepDeleteDTRegistry    = "DELETE_DT_REGISTRY"
	StepDeleteEDCConnector  = "DELETE_EDC_CONNECTOR"
	StepDeleteStorageBucket = "DELETE_STORAGE_BUCKET"
	StepDeleteStorageUser   = "DELETE_STORAGE_USER"
	StepDeleteStoragePolicy = "DELETE_STORAGE_POLICY"
)

// SetupError is the failure of one step that ended a run. Remark is the
// message of the last attempt.
type SetupError struct {
	Step     string `json:"step"`
	Remark   string `json:"remark"`
	Attempts int    `json:"attempts"`
	Err      error  `json:"-"`
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("step %s failed after %d attempt(s): %s", e.Step, e.Attempts, e.Remark)
}

func (e *SetupError) Unwrap() error { return e.Err }

// step is one entry of a declared sequence. run performs the work,
// including its own retries and records.
type step struct {
	model.StepContract
	run func(ctx workflow.Context) error
}

// run holds the state of one orchestrator execution. tc is the shared
// tenant context every step reads from and writes into.
type run struct {
	trigger  model.TriggerEntry
	tenant   model.Tenant
	tool     model.SelectedTool
	action   model.WorkflowAction
	settings model.AutoSetupSettings
	tc       model.TenantContext
}

// retried wraps do in the step retry policy under the contract's name.
func (r *run) retried(c model.StepContract, do func(ctx workflow.Context) error) step {
	return step{StepContract: c, run: func(ctx workflow.Context) error {
		return r.runStep(ctx, c.Name, do)
	}}
}

func (r *run) policy(ctx workflow.Context, name string) retry.Policy {
	logger := workflow.GetLogger(ctx)
	rs := r.settings.Retry
	return retry.Policy{
		MaxAttempts: rs.MaxAttempts,
		Delay:       rs.Delay,
		Multiplier:  rs.Multiplier,
		MaxDelay:    rs.MaxDelay,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			logger.Warn("step attempt failed", "step", name, "attempt", attempt, "wait", wait, "error", retry.Remark(err))
		},
	}
}

// runStep runs do under the retry policy. Every attempt produces exactly
// one trigger step record, written by a deferred call so that no exit path
// skips it. A failure comes back as *SetupError.
func (r *run) runStep(ctx workflow.Context, name string, do func(ctx workflow.Context) error) error {
	return r.runStepRetrying(ctx, name, nil, do)
}

// runStepRetrying is runStep with its own retryable classifier; nil keeps
// the policy default of retrying transient errors only.
func (r *run) runStepRetrying(ctx workflow.Context, name string, retryable func(error) bool, do func(ctx workflow.Context) error) error {
	policy := r.policy(ctx, name)
	if retryable != nil {
		policy.Retryable = retryable
	}
	attempts := 0
	err := retry.Do(sleeper(ctx), policy, func(attempt int) (err error) {
		attempts = attempt
		started := workflow.Now(ctx)
		defer func() { r.record(ctx, name, attempt, started, err) }()
		return do(stepCtx(ctx))
	})
	if err == nil {
		return nil
	}
	return &SetupError{Step: name, Remark: retry.Remark(err), Attempts: attempts, Err: err}
}

// failStep records a step that could not start and returns its SetupError.
func (r *run) failStep(ctx workflow.Context, name string, err error) error {
	r.record(ctx, name, 1, workflow.Now(ctx), err)
	return &SetupError{Step: name, Remark: retry.Remark(err), Attempts: 1, Err: err}
}

// record hands one attempt outcome to the tracker. A tracker failure is
// logged and does not change the outcome of the step.
func (r *run) record(ctx workflow.Context, name string, attempt int, started time.Time, stepErr error) {
	rec := model.TriggerStepRecord{
		ID:        newUUID(ctx),
		TriggerID: r.trigger.ID,
		Step:      name,
		Attempt:   attempt,
		Status:    model.StepSuccess,
		CreatedAt: started,
		UpdatedAt: workflow.Now(ctx),
	}
	if stepErr != nil {
		rec.Status = model.StepFailed
		rec.Remark = retry.Remark(stepErr)
	}
	if err := workflow.ExecuteActivity(bookkeepingCtx(ctx), "RecordTriggerStep", rec).Get(ctx, nil); err != nil {
		workflow.GetLogger(ctx).Error("failed to record trigger step", "step", name, "attempt", attempt, "error", err)
	}
}

// runSequence validates the declared contracts, then runs the steps in
// order and stops at the first failure.
func (r *run) runSequence(ctx workflow.Context, steps []step) error {
	contracts := make([]model.StepContract, len(steps))
	for i, s := range steps {
		contracts[i] = s.StepContract
	}
	if err := model.ValidateSequence(r.tc, contracts); err != nil {
		var mk *model.MissingKeysError
		name := "VALIDATE"
		if errors.As(err, &mk) && mk.Step != "" {
			name = mk.Step
		}
		return r.failStep(ctx, name, retry.Precondition(err.Error(), nil))
	}

	for _, s := range steps {
		if err := r.tc.Require(s.Requires...); err != nil {
			return r.failStep(ctx, s.Name, retry.Precondition(fmt.Sprintf("step %s: %s", s.Name, err), nil))
		}
		if err := s.run(ctx); err != nil {
			return err
		}
	}
	return nil
}
