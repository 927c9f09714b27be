package domain

// CaptureTrigger is sent by the motion detector once movement is confirmed.
type CaptureTrigger struct {
	Timestamp        string   `json:"timestamp"`
	DistanceCm       *float64 `json:"distance_cm"`
	ObjectCount      int      `json:"object_count"`
	CameraResolution string   `json:"camera_resolution"`
	StationID        string   `json:"station_id,omitempty"`
}
