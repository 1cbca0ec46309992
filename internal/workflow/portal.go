package workflow

import (
	"go.temporal.io/sdk/workflow"

	"github.com/edvin/autosetup/internal/activity"
	"github.com/edvin/autosetup/internal/model"
	"github.com/edvin/autosetup/internal/portal"
	"github.com/edvin/autosetup/internal/retry"
)

var portalContract = model.StepContract{
	Name: StepPortalActivation,
	Requires: []string{
		model.KeyDNSName,
		model.KeyDNSNameURLProtocol,
		model.KeySubscriptionID,
		model.KeyServiceID,
	},
	Produces: []string{
		model.KeyApplicationURL,
		model.KeyTechnicalClientID,
		model.KeyTechnicalSecret,
		model.KeyResourceClientID,
	},
}

// portalStep activates the tenant's subscription and stores the technical
// user credentials the portal issued for it.
func (r *run) portalStep() step {
	return r.retried(portalContract, r.activateSubscription)
}

func (r *run) activateSubscription(ctx workflow.Context) error {
	logger := workflow.GetLogger(ctx)
	isApp := r.tool.IsApp()
	subscriptionID := r.tc[model.KeySubscriptionID]
	offerID := r.tc[model.KeyServiceID]

	appURL := baseURL(r.tc[model.KeyDNSNameURLProtocol], r.tc[model.KeyDNSName])
	r.tc[model.KeyApplicationURL] = appURL

	var started portal.StartResponse
	err := workflow.ExecuteActivity(ctx, "StartAutoSetup", activity.StartAutoSetupParams{
		IsApp:          isApp,
		SubscriptionID: subscriptionID,
		OfferURL:       appURL,
	}).Get(ctx, &started)
	if err != nil {
		return err
	}

	var status portal.SubscriptionStatus
	spec := retry.PollSpec{
		Attempts: r.settings.PortalPoll.Attempts,
		Interval: r.settings.PortalPoll.Interval,
		OnMiss: func(attempt int, err error) {
			switch {
			case err == nil:
				logger.Info("subscription not active yet", "attempt", attempt, "status", status.OfferSubscriptionStatus)
			case retry.IsNotFound(err):
				logger.Debug("subscription not provisioned yet", "attempt", attempt)
			default:
				logger.Warn("subscription status check failed", "attempt", attempt, "error", retry.Remark(err))
			}
		},
	}
	err = retry.Poll(sleeper(ctx), spec, func(int) (bool, error) {
		status = portal.SubscriptionStatus{}
		err := workflow.ExecuteActivity(ctx, "GetSubscriptionStatus", activity.SubscriptionStatusParams{
			IsApp:          isApp,
			OfferID:        offerID,
			SubscriptionID: subscriptionID,
		}).Get(ctx, &status)
		if err != nil {
			return false, err
		}
		return status.Active(), nil
	})
	if err != nil {
		return err
	}

	creds, err := r.resolveCredentials(ctx, status, started)
	if err != nil {
		return err
	}
	r.tc.Merge(creds)
	return nil
}

// resolveCredentials reads the technical user of an active subscription.
// The technical user listed on the subscription wins; the one returned by
// the start call is the fallback.
func (r *run) resolveCredentials(ctx workflow.Context, status portal.SubscriptionStatus, started portal.StartResponse) (map[string]string, error) {
	out := map[string]string{model.KeyResourceClientID: status.AppInstanceID}
	if out[model.KeyResourceClientID] == "" && started.ClientInfo != nil {
		out[model.KeyResourceClientID] = started.ClientInfo.ClientID
	}

	switch {
	case len(status.TechnicalUserData) > 0:
		var user portal.TechnicalUser
		err := workflow.ExecuteActivity(ctx, "GetTechnicalUser", status.TechnicalUserData[0].ID).Get(ctx, &user)
		if err != nil {
			return nil, err
		}
		out[model.KeyTechnicalClientID] = user.ClientID
		out[model.KeyTechnicalSecret] = user.Secret
	case started.TechnicalUserInfo != nil:
		out[model.KeyTechnicalClientID] = started.TechnicalUserInfo.TechnicalClientID
		out[model.KeyTechnicalSecret] = started.TechnicalUserInfo.TechnicalUserSecret
	}

	if out[model.KeyTechnicalClientID] == "" || out[model.KeyTechnicalSecret] == "" {
		return nil, retry.Client("portal returned no technical user credentials for subscription "+status.ID, nil)
	}
	return out, nil
}
