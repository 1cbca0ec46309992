package workflow

import (
	"go.temporal.io/sdk/workflow"

	"github.com/edvin/autosetup/internal/helm"
	"github.com/edvin/autosetup/internal/retry"
)

// teardownStep is one removal in the DELETE sequence.
type teardownStep struct {
	name     string
	activity string
	params   interface{}
}

// teardownSequence lists the removals in reverse order of creation.
func (r *run) teardownSequence() []teardownStep {
	var steps []teardownStep
	if r.settings.RegistryEnabled {
		steps = append(steps, r.deletePackageStep(StepDeleteDTRegistry, helm.CategoryDTRegistry))
	}
	steps = append(steps, r.deletePackageStep(StepDeleteEDCConnector, helm.CategoryEDCConnector))
	if r.settings.StorageMediaEnabled {
		steps = append(steps, r.removeStorageSteps()...)
	}
	return steps
}

// teardown attempts every removal. A failed removal is recorded and logged
// and never stops the ones after it. It returns the names of the removals
// that failed.
func (r *run) teardown(ctx workflow.Context) []string {
	logger := workflow.GetLogger(ctx)
	var failed []string
	for _, s := range r.teardownSequence() {
		err := r.runStep(ctx, s.name, func(ctx workflow.Context) error {
			return workflow.ExecuteActivity(ctx, s.activity, s.params).Get(ctx, nil)
		})
		if err != nil {
			logger.Warn("teardown step failed, continuing", "step", s.name, "error", retry.Remark(err))
			failed = append(failed, s.name)
		}
	}
	return failed
}
