package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"smart_toll/internal/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type CaptureService interface {
	HandleTrigger(ctx context.Context, source string, trigger domain.CaptureTrigger) (*domain.AuthorizationOutcome, error)
}

// TollHandler is the booth's capture surface.
type TollHandler struct {
	booth CaptureService
}

func NewTollHandler(booth CaptureService) *TollHandler {
	return &TollHandler{booth: booth}
}

// POST /capture-trigger
func (h *TollHandler) CaptureTrigger(c *gin.Context) {
	var trigger domain.CaptureTrigger
	if err := c.ShouldBindJSON(&trigger); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid capture trigger", "details": err.Error()})
		return
	}
	outcome, err := h.booth.HandleTrigger(c.Request.Context(), "http", trigger)
	h.respond(c, outcome, err)
}

// GET /capture
func (h *TollHandler) Capture(c *gin.Context) {
	outcome, err := h.booth.HandleTrigger(c.Request.Context(), "manual", domain.CaptureTrigger{StationID: c.Query("station_id")})
	h.respond(c, outcome, err)
}

func (h *TollHandler) respond(c *gin.Context, outcome *domain.AuthorizationOutcome, err error) {
	if err != nil {
		status := statusFor(err)
		if errors.Is(err, domain.ErrGeoTimeout) || errors.Is(err, domain.ErrNetwork) {
			c.JSON(status, gin.H{"status": domain.StatusError, "message": err.Error()})
			return
		}
		if status >= http.StatusInternalServerError {
			log.Printf("TollHandler: capture failed: %v", err)
		}
		c.JSON(status, gin.H{"error": errorMessage(err), "details": err.Error()})
		return
	}
	if outcome.Accepted() {
		c.String(http.StatusOK, "toll paid")
		return
	}
	c.String(http.StatusForbidden, "SCAM")
}
