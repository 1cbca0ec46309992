package activity

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/edvin/autosetup/internal/portal"
	"github.com/edvin/autosetup/internal/retry"
)

// PortalAPI is the subset of the portal client used here.
type PortalAPI interface {
	StartAutoSetup(ctx context.Context, isApp bool, req portal.StartRequest) (*portal.StartResponse, error)
	GetSubscriptionStatus(ctx context.Context, isApp bool, offerID, subscriptionID string) (*portal.SubscriptionStatus, error)
	GetTechnicalUser(ctx context.Context, userID string) (*portal.TechnicalUser, error)
}

// Portal contains the portal subscription activities.
type Portal struct {
	api    PortalAPI
	logger zerolog.Logger
}

// NewPortal creates a Portal activity struct. A nil api makes every
// activity fail with a precondition error.
func NewPortal(api PortalAPI, logger zerolog.Logger) *Portal {
	return &Portal{api: api, logger: logger.With().Str("component", "portal-activity").Logger()}
}

// StartAutoSetupParams identifies the subscription to activate.
type StartAutoSetupParams struct {
	IsApp          bool
	SubscriptionID string
	OfferURL       string
}

// StartAutoSetup submits the activation request for a subscription.
func (a *Portal) StartAutoSetup(ctx context.Context, params StartAutoSetupParams) (*portal.StartResponse, error) {
	if a.api == nil {
		return nil, errPortalDisabled
	}
	resp, err := a.api.StartAutoSetup(ctx, params.IsApp, portal.StartRequest{
		RequestID: params.SubscriptionID,
		OfferURL:  params.OfferURL,
	})
	if err != nil {
		return nil, classify("start auto setup", err)
	}
	return resp, nil
}

// SubscriptionStatusParams identifies a subscription of an offer.
type SubscriptionStatusParams struct {
	IsApp          bool
	OfferID        string
	SubscriptionID string
}

// GetSubscriptionStatus reads the subscription status. A 404 comes back as
// a NotFound error, meaning the subscription is not provisioned yet.
func (a *Portal) GetSubscriptionStatus(ctx context.Context, params SubscriptionStatusParams) (*portal.SubscriptionStatus, error) {
	if a.api == nil {
		return nil, errPortalDisabled
	}
	status, err := a.api.GetSubscriptionStatus(ctx, params.IsApp, params.OfferID, params.SubscriptionID)
	if err != nil {
		return nil, classify("get subscription status", err)
	}
	return status, nil
}

// GetTechnicalUser reads the credentials of a technical user.
func (a *Portal) GetTechnicalUser(ctx context.Context, userID string) (*portal.TechnicalUser, error) {
	if a.api == nil {
		return nil, errPortalDisabled
	}
	user, err := a.api.GetTechnicalUser(ctx, userID)
	if err != nil {
		return nil, classify("get technical user", err)
	}
	return user, nil
}

var errPortalDisabled = retry.Precondition("portal integration is not configured", nil)
