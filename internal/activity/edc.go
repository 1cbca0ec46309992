package activity

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/edvin/autosetup/internal/retry"
	"github.com/edvin/autosetup/internal/template"
)

// ConnectorAPI is the subset of the connector management client used here.
type ConnectorAPI interface {
	ListAssets(ctx context.Context, baseURL string, headers map[string]string, filter []byte) ([]json.RawMessage, error)
	CreateAsset(ctx context.Context, baseURL string, headers map[string]string, body []byte) (string, error)
	CreatePolicy(ctx context.Context, baseURL string, headers map[string]string, body []byte) (string, error)
	CreateContractDefinition(ctx context.Context, baseURL string, headers map[string]string, body []byte) (string, error)
}

// EDC contains the dataspace-connector asset activities.
type EDC struct {
	api    ConnectorAPI
	logger zerolog.Logger
}

// NewEDC creates an EDC activity struct.
func NewEDC(api ConnectorAPI, logger zerolog.Logger) *EDC {
	return &EDC{api: api, logger: logger.With().Str("component", "edc-activity").Logger()}
}

// EDCRequest addresses one tenant connector. Values feed the request
// body template; ids and dates are decided by the caller.
type EDCRequest struct {
	Endpoint string
	Headers  map[string]string
	Values   map[string]string
}

// ListEDCAssets returns how many registry assets the connector already has.
func (a *EDC) ListEDCAssets(ctx context.Context, req EDCRequest) (int, error) {
	filter, err := template.Render(template.AssetRequestFilter, req.Values)
	if err != nil {
		return 0, retry.Client("render asset filter", err)
	}
	assets, err := a.api.ListAssets(ctx, req.Endpoint, req.Headers, filter)
	if err != nil {
		return 0, classify("list assets", err)
	}
	return len(assets), nil
}

// CreateEDCAsset creates the registry asset.
func (a *EDC) CreateEDCAsset(ctx context.Context, req EDCRequest) (string, error) {
	return a.create(ctx, "create asset", template.Asset, req, a.api.CreateAsset)
}

// CreateEDCPolicy creates the access policy for the asset.
func (a *EDC) CreateEDCPolicy(ctx context.Context, req EDCRequest) (string, error) {
	return a.create(ctx, "create policy", template.Policy, req, a.api.CreatePolicy)
}

// CreateEDCContractDefinition binds the asset to the policy.
func (a *EDC) CreateEDCContractDefinition(ctx context.Context, req EDCRequest) (string, error) {
	return a.create(ctx, "create contract definition", template.ContractDefinition, req, a.api.CreateContractDefinition)
}

type createFunc func(ctx context.Context, baseURL string, headers map[string]string, body []byte) (string, error)

func (a *EDC) create(ctx context.Context, op, tmpl string, req EDCRequest, call createFunc) (string, error) {
	body, err := template.Render(tmpl, req.Values)
	if err != nil {
		return "", retry.Client("render "+tmpl, err)
	}
	id, err := call(ctx, req.Endpoint, req.Headers, body)
	if err != nil {
		return "", classify(op, err)
	}
	a.logger.Info().Str("op", op).Str("id", id).Msg("connector resource created")
	return id, nil
}
