package remote

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"smart_toll/internal/domain"
)

// LatLonForwarder relays device replies from the bridge to the rendezvous POST /set-latlon.
type LatLonForwarder struct {
	url    string
	client *http.Client
}

func NewLatLonForwarder(geoServiceURL string, timeout time.Duration) *LatLonForwarder {
	return &LatLonForwarder{url: joinURL(geoServiceURL, "/set-latlon"), client: &http.Client{Timeout: timeout}}
}

func (f *LatLonForwarder) Forward(ctx context.Context, correlationID string, reading domain.GeoReading) error {
	lat, lon := reading.Latitude, reading.Longitude
	resp, err := postJSON(ctx, f.client, f.url, domain.SetLatLonDTO{
		Latitude:      &lat,
		Longitude:     &lon,
		CorrelationID: correlationID,
	})
	if err != nil {
		return fmt.Errorf("%w: set-latlon: %v", domain.ErrNetwork, err)
	}
	defer drain(resp)
	switch {
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%w: '%s'", domain.ErrRendezvousConflict, correlationID)
	case resp.StatusCode >= 300:
		return fmt.Errorf("%w: set-latlon returned %s", domain.ErrNetwork, resp.Status)
	}
	return nil
}
