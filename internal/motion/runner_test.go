package motion

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// alternatingSource shows an empty scene once, then a blob that hops between two spots.
type alternatingSource struct {
	n int
}

func (s *alternatingSource) Next(context.Context) (image.Image, error) {
	defer func() { s.n++ }()
	switch {
	case s.n == 0:
		return grayFrame(200, 100, 10, image.Rectangle{}, 0), nil
	case s.n%2 == 1:
		return grayFrame(200, 100, 10, image.Rect(0, 0, 50, 30), 220), nil
	default:
		return grayFrame(200, 100, 10, image.Rect(120, 50, 170, 80), 220), nil
	}
}

type failingSource struct{}

func (failingSource) Next(context.Context) (image.Image, error) {
	return nil, errors.New("camera offline")
}

func TestRunnerStopsAfterTrigger(t *testing.T) {
	model := NewBackgroundModel()
	model.BufferSize = 1
	model.BlurSize = 0
	model.Dilations = 0

	cfg := DefaultConfig()
	cfg.MotionFrames = 2
	cfg.ShutdownDelay = 0
	sink := &recordingSink{}
	detector := NewDetector(cfg, sink)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := NewRunner(&alternatingSource{}, model, detector, time.Millisecond).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateStopped, detector.State())
	require.Equal(t, 1, sink.count())
	assert.Equal(t, "200x100", sink.triggers[0].CameraResolution)
	assert.Equal(t, 1, sink.triggers[0].ObjectCount)
}

func TestRunnerHonoursCancel(t *testing.T) {
	detector := NewDetector(DefaultConfig(), &recordingSink{})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := NewRunner(failingSource{}, NewBackgroundModel(), detector, time.Millisecond).Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateIdle, detector.State())
}
