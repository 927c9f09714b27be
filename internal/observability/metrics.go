package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CaptureTriggers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toll_capture_triggers_total",
		Help: "Capture triggers received, by source",
	}, []string{"source"})
	MotionTriggersSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toll_motion_triggers_sent_total",
		Help: "Capture triggers sent by the motion detector, by result",
	}, []string{"result"})
	Authorizations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toll_authorizations_total",
		Help: "Terminal toll transaction results (accepted, rejected or an error kind)",
	}, []string{"result"})
	RendezvousPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "toll_rendezvous_pending",
		Help: "Position requests currently waiting for a device callback",
	})
	RendezvousResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toll_rendezvous_results_total",
		Help: "Position request results (delivered, timeout, cancelled, conflict, relayed)",
	}, []string{"result"})
	RendezvousWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "toll_rendezvous_wait_seconds",
		Help:    "Time spent waiting for a device position",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "toll_http_requests_total",
		Help: "HTTP requests handled",
	}, []string{"method", "path", "status"})
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "toll_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"method", "path"})
	BridgeClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "toll_bridge_clients",
		Help: "Geo reporter websocket clients connected to the bridge",
	})
)

func ObserveRendezvousWait(start time.Time) {
	RendezvousWait.Observe(time.Since(start).Seconds())
}
