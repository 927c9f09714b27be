package handler

import (
	"context"
	"net/http"

	"smart_toll/internal/domain"

	"github.com/gin-gonic/gin"
)

type StationService interface {
	SaveStation(ctx context.Context, dto domain.StationDTO) (*domain.Station, error)
	GetStation(ctx context.Context, id string) (*domain.Station, error)
}

type StationHandler struct {
	stations StationService
}

func NewStationHandler(stations StationService) *StationHandler {
	return &StationHandler{stations: stations}
}

// POST /api/v1/stations
func (h *StationHandler) SaveStation(c *gin.Context) {
	var dto domain.StationDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	station, err := h.stations.SaveStation(c.Request.Context(), dto)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save station", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, station)
}

// GET /api/v1/stations/:id
func (h *StationHandler) GetStation(c *gin.Context) {
	station, err := h.stations.GetStation(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": errorMessage(err)})
		return
	}
	c.JSON(http.StatusOK, station)
}
