package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smart_toll/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionClientSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/getUserCoords", r.URL.Path)
		assert.Equal(t, "abc", r.URL.Query().Get("correlation_id"))
		assert.Equal(t, "owner@example.com", r.URL.Query().Get("email"))
		_ = json.NewEncoder(w).Encode(domain.UserCoordsResponse{
			Status: domain.StatusSuccess,
			LatLon: &domain.GeoReading{Latitude: 37.7, Longitude: -122.4},
		})
	}))
	defer srv.Close()

	got, err := NewPositionClient(srv.URL, time.Second).RequestPosition(context.Background(),
		domain.PositionRequest{CorrelationID: "abc", Email: "owner@example.com"})
	require.NoError(t, err)
	assert.Equal(t, domain.GeoReading{Latitude: 37.7, Longitude: -122.4}, got)
}

func TestPositionClientErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"timeout", http.StatusGatewayTimeout, `{"status":"error","message":"timed out"}`, domain.ErrGeoTimeout},
		{"conflict", http.StatusConflict, `{"status":"error"}`, domain.ErrRendezvousConflict},
		{"bad gateway", http.StatusBadGateway, `{"status":"error"}`, domain.ErrNetwork},
		{"not json", http.StatusOK, `<html>`, domain.ErrNetwork},
		{"missing latlon", http.StatusOK, `{"status":"success"}`, domain.ErrNetwork},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewPositionClient(srv.URL, time.Second).RequestPosition(context.Background(), domain.PositionRequest{CorrelationID: "x"})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestPositionClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewPositionClient(url, time.Second).RequestPosition(context.Background(), domain.PositionRequest{CorrelationID: "x"})
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestPositionClientContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := NewPositionClient(srv.URL, time.Second).RequestPosition(ctx, domain.PositionRequest{CorrelationID: "x"})
	assert.ErrorIs(t, err, domain.ErrGeoTimeout)
}

func TestCaptureTriggerClient(t *testing.T) {
	var got domain.CaptureTrigger
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/capture-trigger", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	status, err := NewCaptureTriggerClient(srv.URL+"/", time.Second).Fire(context.Background(),
		domain.CaptureTrigger{Timestamp: "now", ObjectCount: 2, CameraResolution: "640x480"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, 2, got.ObjectCount)
	assert.Nil(t, got.DistanceCm)
}

func TestBridgeNotifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trigger", r.URL.Path)
		if r.URL.Query().Get("correlation_id") == "down" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "owner@example.com", r.URL.Query().Get("email"))
		_, _ = w.Write([]byte("Trigger sent to clients"))
	}))
	defer srv.Close()

	n := NewBridgeNotifier(srv.URL, time.Second)
	require.NoError(t, n.NotifyPosition(context.Background(), domain.PositionRequest{CorrelationID: "abc", Email: "owner@example.com"}))
	assert.Error(t, n.NotifyPosition(context.Background(), domain.PositionRequest{CorrelationID: "down"}))
}

func TestLatLonForwarder(t *testing.T) {
	var body domain.SetLatLonDTO
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.CorrelationID == "stale" {
			w.WriteHeader(http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := NewLatLonForwarder(srv.URL, time.Second)
	require.NoError(t, f.Forward(context.Background(), "abc", domain.GeoReading{Latitude: 1.5, Longitude: -2.5}))
	require.NotNil(t, body.Latitude)
	assert.Equal(t, 1.5, *body.Latitude)
	assert.Equal(t, -2.5, *body.Longitude)

	assert.ErrorIs(t, f.Forward(context.Background(), "stale", domain.GeoReading{}), domain.ErrRendezvousConflict)
}
