package service

import (
	"context"
	"encoding/json"
	"fmt"

	"smart_toll/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	log "github.com/sirupsen/logrus"
)

type IoTPublishAPI interface {
	Publish(ctx context.Context, params *iotdataplane.PublishInput, optFns ...func(*iotdataplane.Options)) (*iotdataplane.PublishOutput, error)
}

// BarrierPublisher sends "open" or "hold" to the booth barrier over AWS IoT MQTT.
type BarrierPublisher struct {
	client IoTPublishAPI
}

func NewBarrierPublisher(client IoTPublishAPI) *BarrierPublisher {
	return &BarrierPublisher{client: client}
}

func BarrierTopic(stationID string) string {
	return fmt.Sprintf("smart_toll/booth/%s/barrier", stationID)
}

func (p *BarrierPublisher) PublishOutcome(ctx context.Context, outcome *domain.AuthorizationOutcome) error {
	command := "hold"
	if outcome.Accepted() {
		command = "open"
	}
	payloadBytes, err := json.Marshal(domain.BarrierCommandPayload{
		Command:       command,
		Decision:      outcome.Decision,
		PlateKey:      outcome.PlateKey,
		StationID:     outcome.StationID,
		CorrelationID: outcome.CorrelationID,
	})
	if err != nil {
		return fmt.Errorf("marshal barrier command: %w", err)
	}

	topic := BarrierTopic(outcome.StationID)
	_, err = p.client.Publish(ctx, &iotdataplane.PublishInput{
		Topic:   aws.String(topic),
		Qos:     1,
		Payload: payloadBytes,
	})
	if err != nil {
		return fmt.Errorf("publish barrier command: %w", err)
	}
	log.Printf("BarrierPublisher: sent '%s' to %s (ReqID: %s)", command, topic, outcome.CorrelationID)
	return nil
}
