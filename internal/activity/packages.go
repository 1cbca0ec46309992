package activity

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/edvin/autosetup/internal/helm"
	"github.com/edvin/autosetup/internal/model"
	"github.com/edvin/autosetup/internal/retry"
)

// Packages contains the cluster package activities.
type Packages struct {
	manager helm.Manager
	logger  zerolog.Logger
}

// NewPackages creates a Packages activity struct.
func NewPackages(manager helm.Manager, logger zerolog.Logger) *Packages {
	return &Packages{
		manager: manager,
		logger:  logger.With().Str("component", "package-activity").Logger(),
	}
}

// ManagePackageParams describes one create, update or delete of a package.
type ManagePackageParams struct {
	Category    helm.Category
	PackageName string
	Action      model.WorkflowAction
	Params      map[string]string
}

// ManagePackage installs or upgrades a package depending on the action.
func (a *Packages) ManagePackage(ctx context.Context, params ManagePackageParams) error {
	var err error
	switch params.Action {
	case model.ActionCreate:
		err = a.manager.CreatePackage(ctx, params.Category, params.PackageName, params.Params)
	case model.ActionUpdate:
		err = a.manager.UpdatePackage(ctx, params.Category, params.PackageName, params.Params)
	default:
		return retry.Precondition(fmt.Sprintf("unsupported package action %q", params.Action), nil)
	}
	if err != nil {
		a.logger.Warn().Err(err).Str("category", string(params.Category)).Str("package", params.PackageName).Msg("package apply failed")
		return classify(fmt.Sprintf("%s %s", params.Action, params.Category), err)
	}
	return nil
}

// DeletePackage removes a package.
func (a *Packages) DeletePackage(ctx context.Context, params ManagePackageParams) error {
	if err := a.manager.DeletePackage(ctx, params.Category, params.PackageName, params.Params); err != nil {
		return classify(fmt.Sprintf("delete %s", params.Category), err)
	}
	return nil
}
