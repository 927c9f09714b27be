package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smart_toll/internal/domain"
	"smart_toll/internal/observability"
	"smart_toll/internal/repository"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// PositionSource returns the current position of an owner's device for one transaction.
type PositionSource interface {
	RequestPosition(ctx context.Context, req domain.PositionRequest) (domain.GeoReading, error)
}

// OutcomePublisher is notified of every decision, for example to drive the booth barrier.
type OutcomePublisher interface {
	PublishOutcome(ctx context.Context, outcome *domain.AuthorizationOutcome) error
}

// TollService authorizes a toll for a recognized plate at a station.
type TollService struct {
	plateRepo   repository.LicensePlateRepository
	balanceRepo repository.BalanceRepository
	stationRepo repository.StationRepository
	positions   PositionSource
	ledger      *LedgerService
	radiusKm    float64

	audit     repository.AuthorizationEventRepository // optional
	publisher OutcomePublisher                        // optional

	distance func(lat1, lon1, lat2, lon2 float64) float64
	now      func() time.Time
}

func NewTollService(
	plateRepo repository.LicensePlateRepository,
	balanceRepo repository.BalanceRepository,
	stationRepo repository.StationRepository,
	positions PositionSource,
	ledger *LedgerService,
	radiusKm float64,
) *TollService {
	return &TollService{
		plateRepo:   plateRepo,
		balanceRepo: balanceRepo,
		stationRepo: stationRepo,
		positions:   positions,
		ledger:      ledger,
		radiusKm:    radiusKm,
		distance:    Haversine,
		now:         time.Now,
	}
}

func (s *TollService) SetAuditRecorder(audit repository.AuthorizationEventRepository) {
	s.audit = audit
}

func (s *TollService) SetOutcomePublisher(p OutcomePublisher) {
	s.publisher = p
}

// Authorize runs lookup, rendezvous, distance, decision and commit in that order.
// A geofence rejection returns an outcome with DecisionRejected and a nil error.
func (s *TollService) Authorize(ctx context.Context, plateKey string, stationID string) (*domain.AuthorizationOutcome, error) {
	outcome, err := s.authorize(ctx, plateKey, stationID)
	observability.Authorizations.WithLabelValues(resultLabel(outcome, err)).Inc()
	if err != nil {
		return nil, err
	}
	s.afterDecision(ctx, outcome)
	return outcome, nil
}

func (s *TollService) authorize(ctx context.Context, plateKey string, stationID string) (*domain.AuthorizationOutcome, error) {
	email, err := s.plateRepo.FindOwnerEmail(ctx, plateKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", domain.ErrPlateNotFound, plateKey)
		}
		return nil, fmt.Errorf("lookup owner: %w", err)
	}

	balance, err := s.balanceRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrBalanceNotFound, email)
		}
		return nil, fmt.Errorf("lookup balance: %w", err)
	}

	station, err := s.stationRepo.FindByID(ctx, stationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", domain.ErrStationNotFound, stationID)
		}
		return nil, fmt.Errorf("lookup station: %w", err)
	}

	outcome := &domain.AuthorizationOutcome{
		CorrelationID:    uuid.NewString(),
		PlateKey:         plateKey,
		Email:            email,
		StationID:        station.ID,
		TollAmount:       station.TollAmount,
		PreviousBalance:  balance.Amount,
		TentativeBalance: balance.Amount - station.TollAmount,
		NewBalance:       balance.Amount,
	}
	entry := log.WithFields(log.Fields{"correlation_id": outcome.CorrelationID, "plate_key": plateKey, "station_id": station.ID})

	reading, err := s.positions.RequestPosition(ctx, domain.PositionRequest{
		CorrelationID: outcome.CorrelationID,
		Email:         email,
	})
	if err != nil {
		entry.Printf("TollService: position request failed: %v", err)
		return nil, err
	}
	outcome.Reading = reading
	outcome.DistanceKm = s.distance(reading.Latitude, reading.Longitude, station.Latitude, station.Longitude)
	entry.Printf("TollService: distance between user and station: %.2f km", outcome.DistanceKm)

	if !WithinGeofence(outcome.DistanceKm, s.radiusKm) {
		outcome.Decision = domain.DecisionRejected
		outcome.DecidedAt = s.now().UTC()
		entry.Printf("TollService: rejected, device is %.2f km away (limit %.2f km)", outcome.DistanceKm, s.radiusKm)
		return outcome, nil
	}

	newBalance, err := s.ledger.Commit(ctx, email, station.TollAmount)
	if err != nil {
		return nil, err
	}
	outcome.Decision = domain.DecisionAccepted
	outcome.NewBalance = newBalance
	outcome.DecidedAt = s.now().UTC()
	entry.Printf("TollService: toll paid, new balance %.2f", newBalance)
	return outcome, nil
}

// afterDecision feeds the audit trail and barrier; failures never change the decision.
func (s *TollService) afterDecision(ctx context.Context, outcome *domain.AuthorizationOutcome) {
	if s.audit != nil {
		if err := s.audit.Create(ctx, outcome); err != nil {
			log.WithField("correlation_id", outcome.CorrelationID).Printf("TollService: audit write failed: %v", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishOutcome(ctx, outcome); err != nil {
			log.WithField("correlation_id", outcome.CorrelationID).Printf("TollService: barrier publish failed: %v", err)
		}
	}
}

func resultLabel(outcome *domain.AuthorizationOutcome, err error) string {
	switch {
	case err == nil && outcome != nil:
		return string(outcome.Decision)
	case errors.Is(err, domain.ErrCapture):
		return "capture_error"
	case errors.Is(err, domain.ErrRecognition):
		return "recognition_error"
	case errors.Is(err, domain.ErrPlateNotFound):
		return "plate_not_found"
	case errors.Is(err, domain.ErrBalanceNotFound):
		return "balance_not_found"
	case errors.Is(err, domain.ErrStationNotFound):
		return "station_not_found"
	case errors.Is(err, domain.ErrGeoTimeout):
		return "geo_timeout"
	case errors.Is(err, domain.ErrRendezvousConflict):
		return "rendezvous_conflict"
	case errors.Is(err, domain.ErrNetwork):
		return "network_error"
	}
	return "internal_error"
}
