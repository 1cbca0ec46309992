package workflow

import (
	"go.temporal.io/sdk/workflow"

	"github.com/edvin/autosetup/internal/activity"
	"github.com/edvin/autosetup/internal/model"
)

var storageMediaContract = model.StepContract{
	Name: StepStorageMedia,
	Produces: []string{
		model.KeyStorageBucket,
		model.KeyStorageEndpoint,
		model.KeyStorageAccessKey,
		model.KeyStorageSecretKey,
	},
}

// storageMediaStep provisions the tenant bucket, policy and credentials
// and writes them into the tenant context.
func (r *run) storageMediaStep() step {
	return r.retried(storageMediaContract, func(ctx workflow.Context) error {
		var media activity.StorageMedia
		err := workflow.ExecuteActivity(ctx, "CreateStorageMedia", activity.CreateStorageMediaParams{
			TenantNamespace: r.trigger.TenantNamespace,
			OwnerIdentity:   r.tenant.Email,
		}).Get(ctx, &media)
		if err != nil {
			return err
		}
		r.tc.Merge(map[string]string{
			model.KeyStorageBucket:    media.Bucket,
			model.KeyStorageEndpoint:  media.Endpoint,
			model.KeyStorageAccessKey: media.AccessKey,
			model.KeyStorageSecretKey: media.SecretKey,
		})
		return nil
	})
}

// removeStorageSteps tears down the bucket, the principals and the policy.
// The principals are the access key stored at creation, when there is one,
// and the owner identity.
func (r *run) removeStorageSteps() []teardownStep {
	params := activity.RemoveStorageParams{
		TenantNamespace: r.trigger.TenantNamespace,
		AccessKey:       r.tc[model.KeyStorageAccessKey],
		OwnerIdentity:   r.tenant.Email,
	}
	return []teardownStep{
		{name: StepDeleteStorageBucket, activity: "RemoveStorageBucket", params: params},
		{name: StepDeleteStorageUser, activity: "RemoveStorageUser", params: params},
		{name: StepDeleteStoragePolicy, activity: "RemoveStoragePolicy", params: params},
	}
}
