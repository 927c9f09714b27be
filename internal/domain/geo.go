package domain

// GeoReading is a single position reported by a Geo Reporter Client.
type GeoReading struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PositionRequest asks the rendezvous service for the current position of an owner's device.
type PositionRequest struct {
	CorrelationID string
	Email         string
}

// SetLatLonDTO is the /set-latlon callback body.
type SetLatLonDTO struct {
	Latitude      *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude     *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	CorrelationID string   `json:"correlation_id"`
}

// UserCoordsResponse is the /getUserCoords wire format.
type UserCoordsResponse struct {
	Status        string      `json:"status"`
	LatLon        *GeoReading `json:"latlon,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	Message       string      `json:"message,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ReporterCommand is pushed over the websocket to ask a client for its position.
type ReporterCommand struct {
	Command       string `json:"command"`
	CorrelationID string `json:"correlation_id"`
}

const CommandSendLatLon = "sendlatlon"
