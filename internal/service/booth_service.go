package service

import (
	"context"

	"smart_toll/internal/domain"
	"smart_toll/internal/observability"

	log "github.com/sirupsen/logrus"
)

// BoothService handles a capture trigger end to end for one booth.
type BoothService struct {
	recognizer *PlateRecognizer
	tolls      *TollService
	stationID  string
}

func NewBoothService(recognizer *PlateRecognizer, tolls *TollService, stationID string) *BoothService {
	return &BoothService{recognizer: recognizer, tolls: tolls, stationID: stationID}
}

// HandleTrigger recognizes the plate in front of the booth and authorizes the toll.
func (b *BoothService) HandleTrigger(ctx context.Context, source string, trigger domain.CaptureTrigger) (*domain.AuthorizationOutcome, error) {
	observability.CaptureTriggers.WithLabelValues(source).Inc()
	stationID := b.stationID
	if trigger.StationID != "" {
		stationID = trigger.StationID
	}
	log.WithFields(log.Fields{
		"source":       source,
		"station_id":   stationID,
		"object_count": trigger.ObjectCount,
		"resolution":   trigger.CameraResolution,
	}).Info("BoothService: capture trigger received")

	plateKey, err := b.recognizer.Recognize(ctx)
	if err != nil {
		observability.Authorizations.WithLabelValues(resultLabel(nil, err)).Inc()
		return nil, err
	}
	return b.tolls.Authorize(ctx, plateKey, stationID)
}
