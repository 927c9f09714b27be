package domain

import "time"

type Decision string

const (
	DecisionAccepted Decision = "accepted"
	DecisionRejected Decision = "rejected"
)

// AuthorizationOutcome is the terminal result of one toll transaction.
type AuthorizationOutcome struct {
	CorrelationID    string     `json:"correlation_id"`
	PlateKey         string     `json:"plate_key"`
	Email            string     `json:"email"`
	StationID        string     `json:"station_id"`
	Decision         Decision   `json:"decision"`
	DistanceKm       float64    `json:"distance_km"`
	TollAmount       float64    `json:"toll_amount"`
	PreviousBalance  float64    `json:"previous_balance"`
	TentativeBalance float64    `json:"tentative_balance"`
	NewBalance       float64    `json:"new_balance"` // equals PreviousBalance when rejected
	Reading          GeoReading `json:"reading"`
	DecidedAt        time.Time  `json:"decided_at"`
}

func (o *AuthorizationOutcome) Accepted() bool {
	return o != nil && o.Decision == DecisionAccepted
}

// BarrierCommandPayload is published to the booth barrier topic after each decision.
type BarrierCommandPayload struct {
	Command       string   `json:"command"` // "open" or "hold"
	Decision      Decision `json:"decision"`
	PlateKey      string   `json:"plate_key"`
	StationID     string   `json:"station_id"`
	CorrelationID string   `json:"correlation_id"`
}
