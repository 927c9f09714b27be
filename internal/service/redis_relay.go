package service

import (
	"context"
	"encoding/json"
	"fmt"

	"smart_toll/internal/domain"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const positionRelayChannel = "smart_toll:geo:readings"

type relayedReading struct {
	CorrelationID string  `json:"correlation_id"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
}

// RedisPositionRelay fans device callbacks out to every rendezvous instance over redis pub/sub.
type RedisPositionRelay struct {
	client *redis.Client
}

func NewRedisPositionRelay(ctx context.Context, addr string) (*RedisPositionRelay, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	log.Printf("RedisRelay: connected to %s", addr)
	return &RedisPositionRelay{client: client}, nil
}

func (r *RedisPositionRelay) Publish(ctx context.Context, correlationID string, reading domain.GeoReading) error {
	payload, err := json.Marshal(relayedReading{
		CorrelationID: correlationID,
		Latitude:      reading.Latitude,
		Longitude:     reading.Longitude,
	})
	if err != nil {
		return fmt.Errorf("marshal relayed reading: %w", err)
	}
	return r.client.Publish(ctx, positionRelayChannel, payload).Err()
}

// Run delivers relayed readings to deliver until ctx is cancelled.
func (r *RedisPositionRelay) Run(ctx context.Context, deliver func(correlationID string, reading domain.GeoReading) bool) {
	sub := r.client.Subscribe(ctx, positionRelayChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			log.Println("RedisRelay: context cancelled, stopping.")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var rr relayedReading
			if err := json.Unmarshal([]byte(msg.Payload), &rr); err != nil {
				log.Printf("RedisRelay: bad payload: %v", err)
				continue
			}
			if deliver(rr.CorrelationID, domain.GeoReading{Latitude: rr.Latitude, Longitude: rr.Longitude}) {
				log.WithField("correlation_id", rr.CorrelationID).Debug("RedisRelay: delivered relayed reading")
			}
		}
	}
}

func (r *RedisPositionRelay) Close() error {
	return r.client.Close()
}
