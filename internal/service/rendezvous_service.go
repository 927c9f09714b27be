package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"smart_toll/internal/domain"
	"smart_toll/internal/observability"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// PositionNotifier asks the owner's Geo Reporter Client to report its position.
type PositionNotifier interface {
	NotifyPosition(ctx context.Context, req domain.PositionRequest) error
}

// PositionRelay forwards a reading to whichever instance holds the waiter.
type PositionRelay interface {
	Publish(ctx context.Context, correlationID string, reading domain.GeoReading) error
}

// RendezvousService pairs each position request with exactly one device callback.
// Waiters are keyed by correlation id; a reading is only ever handed to the waiter that asked for it.
type RendezvousService struct {
	notifier PositionNotifier
	relay    PositionRelay
	timeout  time.Duration

	mu      sync.Mutex
	pending map[string]chan domain.GeoReading
}

func NewRendezvousService(notifier PositionNotifier, timeout time.Duration) *RendezvousService {
	return &RendezvousService{
		notifier: notifier,
		timeout:  timeout,
		pending:  make(map[string]chan domain.GeoReading),
	}
}

// SetRelay enables cross-instance delivery for callbacks that land on the wrong instance.
func (s *RendezvousService) SetRelay(relay PositionRelay) {
	s.relay = relay
}

// RequestPosition blocks the calling goroutine until the matching reading arrives, the
// service timeout expires (ErrGeoTimeout) or ctx is cancelled. The pending entry is
// removed on every return path.
func (s *RendezvousService) RequestPosition(ctx context.Context, req domain.PositionRequest) (domain.GeoReading, error) {
	if req.CorrelationID == "" {
		req.CorrelationID = uuid.NewString()
	}
	entry := log.WithFields(log.Fields{"correlation_id": req.CorrelationID, "email": req.Email})

	ch, err := s.register(req.CorrelationID)
	if err != nil {
		observability.RendezvousResults.WithLabelValues("conflict").Inc()
		return domain.GeoReading{}, err
	}
	defer s.release(req.CorrelationID, ch)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	start := time.Now()

	if err := s.notifier.NotifyPosition(ctx, req); err != nil {
		if reading, ok := takeReady(ch); ok {
			observability.RendezvousResults.WithLabelValues("delivered").Inc()
			return reading, nil
		}
		if ctxErr := waitErr(ctx); ctxErr != nil {
			return domain.GeoReading{}, ctxErr
		}
		observability.RendezvousResults.WithLabelValues("notify_failed").Inc()
		entry.Printf("Rendezvous: could not reach geo reporter: %v", err)
		return domain.GeoReading{}, fmt.Errorf("%w: trigger geo reporter: %v", domain.ErrNetwork, err)
	}
	entry.Debug("Rendezvous: waiting for client to respond with lat/lon")

	select {
	case reading := <-ch:
		observability.ObserveRendezvousWait(start)
		observability.RendezvousResults.WithLabelValues("delivered").Inc()
		entry.Printf("Rendezvous: received lat/lon %.5f,%.5f", reading.Latitude, reading.Longitude)
		return reading, nil
	case <-ctx.Done():
		observability.ObserveRendezvousWait(start)
		// a reading accepted just before the deadline still wins
		if reading, ok := takeReady(ch); ok {
			observability.RendezvousResults.WithLabelValues("delivered").Inc()
			entry.Printf("Rendezvous: received lat/lon %.5f,%.5f at the deadline", reading.Latitude, reading.Longitude)
			return reading, nil
		}
		err := waitErr(ctx)
		entry.Printf("Rendezvous: gave up waiting: %v", err)
		return domain.GeoReading{}, err
	}
}

// DeliverPosition hands reading to the waiter registered under correlationID, exactly once.
// Unknown, expired or already fulfilled ids return ErrRendezvousConflict unless a relay is set.
func (s *RendezvousService) DeliverPosition(ctx context.Context, correlationID string, reading domain.GeoReading) error {
	if s.DeliverLocal(correlationID, reading) {
		return nil
	}
	if s.relay != nil && correlationID != "" {
		if err := s.relay.Publish(ctx, correlationID, reading); err != nil {
			return fmt.Errorf("%w: relay reading: %v", domain.ErrNetwork, err)
		}
		observability.RendezvousResults.WithLabelValues("relayed").Inc()
		log.WithField("correlation_id", correlationID).Debug("Rendezvous: reading relayed to peer instances")
		return nil
	}
	observability.RendezvousResults.WithLabelValues("conflict").Inc()
	return fmt.Errorf("%w: '%s'", domain.ErrRendezvousConflict, correlationID)
}

// DeliverLocal reports whether a local waiter took the reading.
func (s *RendezvousService) DeliverLocal(correlationID string, reading domain.GeoReading) bool {
	s.mu.Lock()
	ch, ok := s.pending[correlationID]
	if ok {
		delete(s.pending, correlationID)
	}
	s.updateGaugeLocked()
	s.mu.Unlock()

	if !ok {
		return false
	}
	// buffered with capacity 1 and removed from the table above, so this never blocks
	ch <- reading
	return true
}

// Pending returns the number of outstanding requests.
func (s *RendezvousService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *RendezvousService) register(id string) (chan domain.GeoReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.pending[id]; exists {
		return nil, fmt.Errorf("%w: '%s' already has a pending request", domain.ErrRendezvousConflict, id)
	}
	ch := make(chan domain.GeoReading, 1)
	s.pending[id] = ch
	s.updateGaugeLocked()
	return ch, nil
}

func (s *RendezvousService) release(id string, ch chan domain.GeoReading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.pending[id]; ok && cur == ch {
		delete(s.pending, id)
	}
	s.updateGaugeLocked()
}

func (s *RendezvousService) updateGaugeLocked() {
	observability.RendezvousPending.Set(float64(len(s.pending)))
}

func takeReady(ch chan domain.GeoReading) (domain.GeoReading, bool) {
	select {
	case reading := <-ch:
		return reading, true
	default:
		return domain.GeoReading{}, false
	}
}

func waitErr(ctx context.Context) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		observability.RendezvousResults.WithLabelValues("timeout").Inc()
		return domain.ErrGeoTimeout
	case ctx.Err() != nil:
		observability.RendezvousResults.WithLabelValues("cancelled").Inc()
		return ctx.Err()
	}
	return nil
}
