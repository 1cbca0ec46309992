package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/edvin/autosetup/internal/activity"
	"github.com/edvin/autosetup/internal/model"
	"github.com/edvin/autosetup/internal/platform"
	"github.com/edvin/autosetup/internal/retry"
)

// bookkeepingCtx returns a context for activities that persist run state.
// They are not provisioning steps, so Temporal retries them on its own.
func bookkeepingCtx(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:    5,
			InitialInterval:    time.Second,
			MaximumInterval:    30 * time.Second,
			BackoffCoefficient: 2.0,
		},
	})
}

// stepCtx returns a context for provisioning step activities. Each attempt
// is a single activity execution; the step retry policy decides whether to
// run another one.
func stepCtx(ctx workflow.Context) workflow.Context {
	return workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})
}

// sleeper turns workflow timers into a retry.Sleeper.
func sleeper(ctx workflow.Context) retry.Sleeper {
	return func(d time.Duration) error {
		return workflow.Sleep(ctx, d)
	}
}

// sideEffectString records a generated value in history so replays see
// the same one.
func sideEffectString(ctx workflow.Context, gen func() string) string {
	var v string
	_ = workflow.SideEffect(ctx, func(workflow.Context) interface{} {
		return gen()
	}).Get(&v)
	return v
}

func newUUID(ctx workflow.Context) string {
	return sideEffectString(ctx, platform.NewID)
}

func newSecret(ctx workflow.Context, n int) string {
	return sideEffectString(ctx, func() string { return platform.NewSecret(n) })
}

// setEntryStatus persists the status of the trigger entry. A nil output
// context keeps the stored one.
func setEntryStatus(ctx workflow.Context, id, status string, remark *string, output model.TenantContext) error {
	return workflow.ExecuteActivity(bookkeepingCtx(ctx), "UpdateTriggerEntry", activity.UpdateTriggerEntryParams{
		ID:            id,
		Status:        status,
		Remark:        remark,
		OutputContext: output,
	}).Get(ctx, nil)
}
