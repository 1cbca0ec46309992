package workflow

import (
	"go.temporal.io/sdk/workflow"

	"github.com/edvin/autosetup/internal/activity"
	"github.com/edvin/autosetup/internal/model"
	"github.com/edvin/autosetup/internal/retry"
)

// edcDateLayout is dd/MM/yyyy HH:mm:ss.
const edcDateLayout = "02/01/2006 15:04:05"

var edcRegistrationContract = model.StepContract{
	Name: StepEDCRegistration,
	Requires: []string{
		model.KeyControlPlaneDataEndpoint,
		model.KeyEDCAPIKey,
		model.KeyEDCAPIKeyValue,
		model.KeyRegistryURL,
	},
	Produces: []string{model.KeyAssetID, model.KeyPolicyID, model.KeyContractPolicyID},
}

// edcRegistrationStep publishes the registry as a connector asset. It
// waits for the connector to settle, then creates the asset, policy and
// contract definition only if the connector has no registry asset yet.
// Each of those calls is its own retried step with its own records.
func (r *run) edcRegistrationStep() step {
	return step{StepContract: edcRegistrationContract, run: r.registerRegistryAsset}
}

func notReadyOrTransient(err error) bool {
	return retry.IsTransient(err) || retry.IsNotFound(err)
}

func (r *run) edcRequest() activity.EDCRequest {
	values := r.tc.Clone()
	values["organizationName"] = r.tenant.OrganizationName
	return activity.EDCRequest{
		Endpoint: r.tc[model.KeyControlPlaneDataEndpoint],
		Headers:  map[string]string{r.tc[model.KeyEDCAPIKey]: r.tc[model.KeyEDCAPIKeyValue]},
		Values:   values,
	}
}

func (r *run) registerRegistryAsset(ctx workflow.Context) error {
	logger := workflow.GetLogger(ctx)

	if d := r.settings.EDCSettleDelay; d > 0 {
		logger.Info("waiting for connector to settle", "delay", d)
		if err := workflow.Sleep(ctx, d); err != nil {
			return err
		}
	}

	// A connector that is still starting answers the query with 404.
	var existing int
	err := r.runStepRetrying(ctx, StepEDCAssetLookup, notReadyOrTransient, func(ctx workflow.Context) error {
		return workflow.ExecuteActivity(ctx, "ListEDCAssets", r.edcRequest()).Get(ctx, &existing)
	})
	if err != nil {
		return err
	}
	if existing > 0 {
		logger.Info("registry asset already present, skipping creation", "assets", existing)
		return nil
	}

	now := workflow.Now(ctx).Format(edcDateLayout)
	r.tc.Merge(map[string]string{
		model.KeyAssetID:          newUUID(ctx),
		model.KeyPolicyID:         newUUID(ctx),
		model.KeyContractPolicyID: newUUID(ctx),
		model.KeyCreatedDate:      now,
		model.KeyUpdateDate:       now,
	})

	for _, c := range []struct{ step, activity string }{
		{StepCreateEDCAsset, "CreateEDCAsset"},
		{StepCreateEDCPolicy, "CreateEDCPolicy"},
		{StepCreateContractDef, "CreateEDCContractDefinition"},
	} {
		err := r.runStep(ctx, c.step, func(ctx workflow.Context) error {
			var id string
			if err := workflow.ExecuteActivity(ctx, c.activity, r.edcRequest()).Get(ctx, &id); err != nil {
				return err
			}
			logger.Info("connector resource created", "step", c.step, "id", id)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
