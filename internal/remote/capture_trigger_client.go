package remote

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"smart_toll/internal/domain"
)

// CaptureTriggerClient posts motion detections to a booth's /capture-trigger endpoint.
type CaptureTriggerClient struct {
	url    string
	client *http.Client
}

func NewCaptureTriggerClient(boothURL string, timeout time.Duration) *CaptureTriggerClient {
	return &CaptureTriggerClient{
		url:    joinURL(boothURL, "/capture-trigger"),
		client: &http.Client{Timeout: timeout},
	}
}

// Fire sends the trigger and returns the booth's status code; the response body carries no contract.
func (c *CaptureTriggerClient) Fire(ctx context.Context, trigger domain.CaptureTrigger) (int, error) {
	resp, err := postJSON(ctx, c.client, c.url, trigger)
	if err != nil {
		return 0, fmt.Errorf("%w: capture trigger: %v", domain.ErrNetwork, err)
	}
	defer drain(resp)
	return resp.StatusCode, nil
}
