package service

import (
	"context"
	"testing"

	"smart_toll/internal/camera"
	"smart_toll/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBoothFixture(t *testing.T, cam *stubCamera, ocr *stubOCR) (*BoothService, *tollFixture) {
	t.Helper()
	f := newTollFixture(t)
	return NewBoothService(NewPlateRecognizer(cam, ocr), f.svc, "navtoll123"), f
}

func TestHandleTriggerPaysToll(t *testing.T) {
	frame := &camera.Frame{Data: []byte{0xff, 0xd8, 0x01}}
	ocr := &stubOCR{tokens: []string{"California", "7ABC 123"}}
	booth, f := newBoothFixture(t, &stubCamera{frame: frame}, ocr)

	outcome, err := booth.HandleTrigger(context.Background(), "http", domain.CaptureTrigger{ObjectCount: 1})
	require.NoError(t, err)
	assert.True(t, outcome.Accepted())
	assert.Equal(t, testPlate, outcome.PlateKey)
	assert.Equal(t, 7.0, f.store.balance("owner@example.com"))

	assert.Equal(t, []byte{0xff, 0xd8, 0x01}, ocr.seen)
	assert.True(t, frame.Released())
	assert.Nil(t, frame.Data)
}

func TestHandleTriggerSingleTokenStopsPipeline(t *testing.T) {
	frame := &camera.Frame{Data: []byte{1}}
	booth, f := newBoothFixture(t, &stubCamera{frame: frame}, &stubOCR{tokens: []string{"California"}})

	_, err := booth.HandleTrigger(context.Background(), "http", domain.CaptureTrigger{})
	assert.ErrorIs(t, err, domain.ErrRecognition)
	assert.Zero(t, f.positions.calls())
	assert.Zero(t, f.store.increments)
	assert.True(t, frame.Released())
}

func TestHandleTriggerCaptureFailure(t *testing.T) {
	booth, f := newBoothFixture(t, &stubCamera{err: errBoom}, &stubOCR{})

	_, err := booth.HandleTrigger(context.Background(), "http", domain.CaptureTrigger{})
	assert.ErrorIs(t, err, domain.ErrCapture)
	assert.Zero(t, f.positions.calls())
}

func TestHandleTriggerOCRFailureIsNetworkError(t *testing.T) {
	frame := &camera.Frame{Data: []byte{1}}
	booth, _ := newBoothFixture(t, &stubCamera{frame: frame}, &stubOCR{err: errBoom})

	_, err := booth.HandleTrigger(context.Background(), "http", domain.CaptureTrigger{})
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.True(t, frame.Released())
}

func TestHandleTriggerStationOverride(t *testing.T) {
	frame := &camera.Frame{Data: []byte{1}}
	booth, f := newBoothFixture(t, &stubCamera{frame: frame}, &stubOCR{tokens: []string{"California", "7ABC 123"}})
	f.store.stations["far"] = &domain.Station{ID: "far", TollAmount: 5, Latitude: 0, Longitude: 0}

	outcome, err := booth.HandleTrigger(context.Background(), "sqs", domain.CaptureTrigger{StationID: "far"})
	require.NoError(t, err)
	assert.Equal(t, "far", outcome.StationID)
	assert.Equal(t, domain.DecisionRejected, outcome.Decision)
}
