// Package edc talks to the management API of a tenant's dataspace connector.
package edc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	assetsPath              = "/v3/assets"
	assetsQueryPath         = "/v3/assets/request"
	policyDefinitionsPath   = "/v3/policydefinitions"
	contractDefinitionsPath = "/v3/contractdefinitions"
)

// StatusError is a non-2xx answer from the connector.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// HTTPStatus exposes the status code for error classification.
func (e *StatusError) HTTPStatus() int { return e.StatusCode }

// Client calls the connector management API. The base URL and the API key
// header differ per tenant, so both are passed on every call.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a connector management API client with a 30s timeout.
func NewClient() *Client {
	return &Client{httpClient: &http.Client{Timeout: 30 * time.Second}}
}

// ListAssets queries assets matching filter and returns the raw result set.
func (c *Client) ListAssets(ctx context.Context, baseURL string, headers map[string]string, filter []byte) ([]json.RawMessage, error) {
	var assets []json.RawMessage
	if err := c.post(ctx, "list assets", endpoint(baseURL, assetsQueryPath), headers, filter, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// CreateAsset creates an asset and returns the id the connector assigned.
func (c *Client) CreateAsset(ctx context.Context, baseURL string, headers map[string]string, body []byte) (string, error) {
	return c.create(ctx, "create asset", endpoint(baseURL, assetsPath), headers, body)
}

// CreatePolicy creates a policy definition.
func (c *Client) CreatePolicy(ctx context.Context, baseURL string, headers map[string]string, body []byte) (string, error) {
	return c.create(ctx, "create policy", endpoint(baseURL, policyDefinitionsPath), headers, body)
}

// CreateContractDefinition creates a contract definition.
func (c *Client) CreateContractDefinition(ctx context.Context, baseURL string, headers map[string]string, body []byte) (string, error) {
	return c.create(ctx, "create contract definition", endpoint(baseURL, contractDefinitionsPath), headers, body)
}

func endpoint(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + path
}

type idResponse struct {
	ID string `json:"@id"`
}

func (c *Client) create(ctx context.Context, op, url string, headers map[string]string, body []byte) (string, error) {
	var resp idResponse
	if err := c.post(ctx, op, url, headers, body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *Client) post(ctx context.Context, op, url string, headers map[string]string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}
	if resp.StatusCode >= 300 {
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
