package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/edvin/autosetup/internal/model"
	"github.com/edvin/autosetup/internal/retry"
)

// Callback contains the activity that notifies a caller when a run ends.
type Callback struct {
	client *http.Client
}

// NewCallback creates a new Callback activity struct.
func NewCallback() *Callback {
	return &Callback{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// SendCallbackParams holds parameters for the SendCallback activity.
type SendCallbackParams struct {
	URL     string                `json:"url"`
	Payload model.CallbackPayload `json:"payload"`
}

// SendCallback POSTs the run outcome to the callback URL.
//   - 2xx → success
//   - 4xx → non-retryable client error
//   - 5xx / network error → transient, retried by the activity retry policy
func (a *Callback) SendCallback(ctx context.Context, params SendCallbackParams) error {
	body, err := json.Marshal(params.Payload)
	if err != nil {
		return retry.Client("marshal callback payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, params.URL, bytes.NewReader(body))
	if err != nil {
		return retry.Client("create callback request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return retry.Transient(fmt.Sprintf("callback POST to %s", params.URL), err)
	}
	defer func() { io.Copy(io.Discard, resp.Body); resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return retry.Client(fmt.Sprintf("callback returned %d", resp.StatusCode), nil)
	}
	return retry.Transient(fmt.Sprintf("callback returned %d", resp.StatusCode), nil)
}
