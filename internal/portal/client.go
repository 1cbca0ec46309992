// Package portal is the marketplace portal client: subscription activation,
// subscription status and technical-user lookup. Each call exchanges client
// credentials for a fresh bearer token, so tokens never outlive a poll window.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

// StatusActive is the subscription status that ends activation polling.
const StatusActive = "ACTIVE"

// Config holds the portal endpoint and the client-credentials grant.
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// StatusError is a non-2xx answer from the portal.
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

// StartRequest asks the portal to finish provisioning a subscription.
type StartRequest struct {
	RequestID string `json:"requestId"`
	OfferURL  string `json:"offerUrl"`
}

// TechnicalUserInfo is the technical user the portal may return on start.
type TechnicalUserInfo struct {
	TechnicalUserID     string `json:"technicalUserId"`
	TechnicalUserSecret string `json:"technicalUserSecret"`
	TechnicalClientID   string `json:"technicalClientId"`
}

// ClientInfo carries the resource client the portal created for the offer.
type ClientInfo struct {
	ClientID string `json:"clientId"`
}

// StartResponse is the answer to a start request.
type StartResponse struct {
	TechnicalUserInfo *TechnicalUserInfo `json:"technicalUserInfo,omitempty"`
	ClientInfo        *ClientInfo        `json:"clientInfo,omitempty"`
}

// TechnicalUserRef identifies a technical user attached to a subscription.
type TechnicalUserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SubscriptionStatus is the provider view of a subscription.
type SubscriptionStatus struct {
	ID                      string             `json:"id"`
	OfferSubscriptionStatus string             `json:"offerSubscriptionStatus"`
	AppInstanceID           string             `json:"appInstanceId"`
	TechnicalUserData       []TechnicalUserRef `json:"technicalUserData"`
}

// Active reports whether the subscription reached the ACTIVE state.
func (s SubscriptionStatus) Active() bool {
	return strings.EqualFold(s.OfferSubscriptionStatus, StatusActive)
}

// TechnicalUser is a service account credential set.
type TechnicalUser struct {
	ServiceAccountID string `json:"serviceAccountId"`
	ClientID         string `json:"clientId"`
	Secret           string `json:"secret"`
	Name             string `json:"name"`
}

// Client calls the portal API.
type Client struct {
	baseURL    string
	creds      clientcredentials.Config
	httpClient *http.Client
}

// NewClient creates a portal client that fetches tokens with the client credentials grant.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		creds: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		},
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func offerCollection(isApp bool) string {
	if isApp {
		return "apps"
	}
	return "services"
}

// StartAutoSetup submits the activation request. Resubmitting for an
// already active subscription is tolerated by the portal.
func (c *Client) StartAutoSetup(ctx context.Context, isApp bool, req StartRequest) (*StartResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal start request: %w", err)
	}
	var resp StartResponse
	path := fmt.Sprintf("/api/%s/start-autoSetup", offerCollection(isApp))
	if err := c.do(ctx, "start auto setup", http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSubscriptionStatus reads the provider view of a subscription.
func (c *Client) GetSubscriptionStatus(ctx context.Context, isApp bool, offerID, subscriptionID string) (*SubscriptionStatus, error) {
	var resp SubscriptionStatus
	path := fmt.Sprintf("/api/%s/%s/subscription/%s/provider",
		offerCollection(isApp), url.PathEscape(offerID), url.PathEscape(subscriptionID))
	if err := c.do(ctx, "get subscription status", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTechnicalUser reads a technical user's credentials.
func (c *Client) GetTechnicalUser(ctx context.Context, userID string) (*TechnicalUser, error) {
	var resp TechnicalUser
	path := "/api/administration/serviceaccount/owncompany/serviceaccounts/" + url.PathEscape(userID)
	if err := c.do(ctx, "get technical user", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte, out any) error {
	token, err := c.creds.Token(ctx)
	if err != nil {
		return fmt.Errorf("%s: acquire token: %w", op, err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s request: %w", op, err)
	}
	token.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
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
	if len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
