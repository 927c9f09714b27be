package handler

import (
	"context"
	"errors"
	"net/http"

	"smart_toll/internal/domain"
	"smart_toll/internal/service"
)

// statusFor maps the pipeline error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrRecognition):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPlateNotFound),
		errors.Is(err, domain.ErrBalanceNotFound),
		errors.Is(err, domain.ErrStationNotFound),
		errors.Is(err, service.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRendezvousConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrGeoTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// errorMessage is the sentinel's text for known errors, so wrapped details stay out of the "error" field.
func errorMessage(err error) string {
	for _, known := range []error{
		domain.ErrCapture, domain.ErrRecognition, domain.ErrPlateNotFound, domain.ErrBalanceNotFound,
		domain.ErrStationNotFound, domain.ErrGeoTimeout, domain.ErrRendezvousConflict, domain.ErrNetwork,
		service.ErrAccountNotFound,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "internal error"
}
