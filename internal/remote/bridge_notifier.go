package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"smart_toll/internal/domain"
)

// BridgeNotifier calls the websocket bridge's GET /trigger to wake the owner's device.
type BridgeNotifier struct {
	baseURL string
	client  *http.Client
}

func NewBridgeNotifier(bridgeURL string, timeout time.Duration) *BridgeNotifier {
	return &BridgeNotifier{baseURL: bridgeURL, client: &http.Client{Timeout: timeout}}
}

func (n *BridgeNotifier) NotifyPosition(ctx context.Context, req domain.PositionRequest) error {
	q := url.Values{}
	q.Set("correlation_id", req.CorrelationID)
	if req.Email != "" {
		q.Set("email", req.Email)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, joinURL(n.baseURL, "/trigger")+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build trigger request: %w", err)
	}
	resp, err := n.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("trigger: %w", err)
	}
	defer drain(resp)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("trigger: bridge returned %s", resp.Status)
	}
	return nil
}
