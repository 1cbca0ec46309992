package activity

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/autosetup/internal/helm"
	"github.com/edvin/autosetup/internal/model"
	"github.com/edvin/autosetup/internal/retry"
)

func TestManagePackage_CreateVsUpdate(t *testing.T) {
	mgr := &recordingManager{}
	a := NewPackages(mgr, zerolog.Nop())
	params := map[string]string{"dnsName": "acme.example.com"}

	require.NoError(t, a.ManagePackage(context.Background(), ManagePackageParams{
		Category: helm.CategoryDTRegistry, PackageName: "registry", Action: model.ActionCreate, Params: params,
	}))
	require.NoError(t, a.ManagePackage(context.Background(), ManagePackageParams{
		Category: helm.CategoryDTRegistry, PackageName: "registry", Action: model.ActionUpdate, Params: params,
	}))

	require.Len(t, mgr.calls, 2)
	assert.Equal(t, "create", mgr.calls[0].Op)
	assert.Equal(t, "update", mgr.calls[1].Op)
	assert.Equal(t, "registry", mgr.calls[1].Name)
	assert.Equal(t, params, mgr.calls[1].Params)
}

func TestManagePackage_DeleteActionRejected(t *testing.T) {
	a := NewPackages(&recordingManager{}, zerolog.Nop())
	err := a.ManagePackage(context.Background(), ManagePackageParams{Action: model.ActionDelete})
	assert.ErrorContains(t, err, "unsupported action")
}

func TestManagePackage_FailureIsTransient(t *testing.T) {
	a := NewPackages(&recordingManager{err: errors.New("timed out waiting for the condition")}, zerolog.Nop())
	err := a.ManagePackage(context.Background(), ManagePackageParams{
		Category: helm.CategoryEDCConnector, PackageName: "edc", Action: model.ActionCreate,
	})
	assert.True(t, retry.IsTransient(err))
	assert.Contains(t, retry.Remark(err), "timed out waiting for the condition")
}

func TestDeletePackage(t *testing.T) {
	mgr := &recordingManager{}
	a := NewPackages(mgr, zerolog.Nop())
	require.NoError(t, a.DeletePackage(context.Background(), ManagePackageParams{Category: helm.CategoryEDCConnector, PackageName: "edc"}))
	assert.Equal(t, "delete", mgr.calls[0].Op)
}
