package handler

import (
	"context"
	"errors"
	"net/http"

	"smart_toll/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type PositionService interface {
	RequestPosition(ctx context.Context, req domain.PositionRequest) (domain.GeoReading, error)
	DeliverPosition(ctx context.Context, correlationID string, reading domain.GeoReading) error
}

// GeoHandler exposes the coordinate rendezvous over HTTP.
type GeoHandler struct {
	positions PositionService
}

func NewGeoHandler(positions PositionService) *GeoHandler {
	return &GeoHandler{positions: positions}
}

// GET /getUserCoords?email=&correlation_id=
func (h *GeoHandler) GetUserCoords(c *gin.Context) {
	id := c.Query("correlation_id")
	if id == "" {
		id = uuid.NewString()
	}
	reading, err := h.positions.RequestPosition(c.Request.Context(), domain.PositionRequest{
		CorrelationID: id,
		Email:         c.Query("email"),
	})
	if err != nil {
		c.JSON(statusFor(err), domain.UserCoordsResponse{
			Status:        domain.StatusError,
			CorrelationID: id,
			Message:       err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, domain.UserCoordsResponse{
		Status:        domain.StatusSuccess,
		LatLon:        &reading,
		CorrelationID: id,
	})
}

// POST /set-latlon
func (h *GeoHandler) SetLatLon(c *gin.Context) {
	var dto domain.SetLatLonDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": domain.StatusError, "message": err.Error()})
		return
	}
	if dto.CorrelationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": domain.StatusError, "message": "correlation_id is required"})
		return
	}

	reading := domain.GeoReading{Latitude: *dto.Latitude, Longitude: *dto.Longitude}
	if err := h.positions.DeliverPosition(c.Request.Context(), dto.CorrelationID, reading); err != nil {
		if !errors.Is(err, domain.ErrRendezvousConflict) {
			log.WithField("correlation_id", dto.CorrelationID).Printf("GeoHandler: delivery failed: %v", err)
		}
		c.JSON(statusFor(err), gin.H{"status": domain.StatusError, "message": err.Error(), "correlation_id": dto.CorrelationID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": domain.StatusSuccess, "data": reading, "correlation_id": dto.CorrelationID})
}
