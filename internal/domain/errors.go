package domain

import "errors"

// Toll pipeline error taxonomy. A geofence rejection is an outcome, not an error.
var (
	ErrCapture            = errors.New("capture failed")
	ErrRecognition        = errors.New("failed to detect a valid license plate")
	ErrPlateNotFound      = errors.New("license plate not found")
	ErrBalanceNotFound    = errors.New("balance not found for this user")
	ErrStationNotFound    = errors.New("station not found")
	ErrGeoTimeout         = errors.New("timed out waiting for device position")
	ErrRendezvousConflict = errors.New("no pending position request for correlation id")
	ErrNetwork            = errors.New("cross-service call failed")
)
