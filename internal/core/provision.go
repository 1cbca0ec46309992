package core

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/api/serviceerror"
	temporalclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/edvin/autosetup/internal/workflow"
)

const (
	taskQueue    = "autosetup-tasks"
	workflowName = "AutoSetupWorkflow"
)

// workflowID derives the Temporal workflow ID from the tenant namespace.
// Every run of one tenant shares it, so the server refuses a second run
// while one is still open.
func workflowID(tenantNamespace string) string {
	return fmt.Sprintf("autosetup-%s", tenantNamespace)
}

// startRun starts the orchestrator for one trigger entry. A run already
// open for the same tenant yields ErrConflict.
func startRun(ctx context.Context, tc temporalclient.Client, params workflow.AutoSetupParams) (string, error) {
	run, err := tc.ExecuteWorkflow(ctx, temporalclient.StartWorkflowOptions{
		ID:                                       workflowID(params.Trigger.TenantNamespace),
		TaskQueue:                                taskQueue,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
		RetryPolicy:                              &temporal.RetryPolicy{MaximumAttempts: 1},
	}, workflowName, params)
	if err != nil {
		if isAlreadyStarted(err) {
			return "", fmt.Errorf("%w: a run for tenant %s is already in progress", ErrConflict, params.Trigger.TenantNamespace)
		}
		return "", fmt.Errorf("start %s: %w", workflowName, err)
	}
	return run.GetRunID(), nil
}

func isAlreadyStarted(err error) bool {
	var already *serviceerror.WorkflowExecutionAlreadyStarted
	return errors.As(err, &already)
}
