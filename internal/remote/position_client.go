package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"smart_toll/internal/domain"
)

// PositionClient asks the rendezvous service for an owner's position over GET /getUserCoords.
type PositionClient struct {
	baseURL string
	client  *http.Client
}

// NewPositionClient takes a timeout slightly above the rendezvous deadline so the
// service's own 504 normally wins.
func NewPositionClient(geoServiceURL string, timeout time.Duration) *PositionClient {
	return &PositionClient{baseURL: geoServiceURL, client: &http.Client{Timeout: timeout}}
}

func (c *PositionClient) RequestPosition(ctx context.Context, req domain.PositionRequest) (domain.GeoReading, error) {
	q := url.Values{}
	q.Set("correlation_id", req.CorrelationID)
	q.Set("email", req.Email)
	endpoint := joinURL(c.baseURL, "/getUserCoords") + "?" + q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.GeoReading{}, fmt.Errorf("build position request: %w", err)
	}
	resp, err := c.client.Do(httpReq)
	if err != nil {
		var netErr net.Error
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return domain.GeoReading{}, domain.ErrGeoTimeout
		}
		return domain.GeoReading{}, fmt.Errorf("%w: getUserCoords: %v", domain.ErrNetwork, err)
	}
	defer drain(resp)

	var body domain.UserCoordsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.GeoReading{}, fmt.Errorf("%w: decode getUserCoords (%s): %v", domain.ErrNetwork, resp.Status, err)
	}

	switch {
	case resp.StatusCode == http.StatusGatewayTimeout:
		return domain.GeoReading{}, fmt.Errorf("%w: %s", domain.ErrGeoTimeout, body.Message)
	case resp.StatusCode == http.StatusConflict:
		return domain.GeoReading{}, fmt.Errorf("%w: %s", domain.ErrRendezvousConflict, body.Message)
	case resp.StatusCode != http.StatusOK || body.Status != domain.StatusSuccess || body.LatLon == nil:
		return domain.GeoReading{}, fmt.Errorf("%w: getUserCoords returned %s: %s", domain.ErrNetwork, resp.Status, body.Message)
	}
	return *body.LatLon, nil
}
