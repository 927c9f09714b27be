package motion

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"smart_toll/internal/domain"
	"smart_toll/internal/observability"

	log "github.com/sirupsen/logrus"
)

type State int

const (
	StateIdle State = iota
	StateAccumulating
	StateTriggered
	StateShuttingDown
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAccumulating:
		return "accumulating"
	case StateTriggered:
		return "triggered"
	case StateShuttingDown:
		return "shutting_down"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// TriggerSink delivers a capture trigger to the booth.
type TriggerSink interface {
	Fire(ctx context.Context, trigger domain.CaptureTrigger) (int, error)
}

type Config struct {
	MotionFrames   int
	MoveThreshold  int
	MergeOverlap   float64
	ShutdownDelay  time.Duration
	TriggerTimeout time.Duration
	StationID      string
}

func DefaultConfig() Config {
	return Config{
		MotionFrames:   MotionFrames,
		MoveThreshold:  MoveThresholdPx,
		MergeOverlap:   MergeOverlap,
		ShutdownDelay:  5 * time.Second,
		TriggerTimeout: 3 * time.Second,
	}
}

// Observation is the foreground found in one frame, before merging.
type Observation struct {
	Boxes  []Box
	Width  int
	Height int
	At     time.Time
}

// Detector is the per-frame state machine. Observe must be called from a single goroutine;
// the trigger itself is sent in the background so a slow booth never stalls the frame loop.
type Detector struct {
	cfg  Config
	sink TriggerSink

	state   State
	counter int
	last    []Point
	fired   bool
	firedAt time.Time

	inflight sync.WaitGroup
}

func NewDetector(cfg Config, sink TriggerSink) *Detector {
	return &Detector{cfg: cfg, sink: sink}
}

func (d *Detector) State() State { return d.state }

func (d *Detector) Counter() int { return d.counter }

// Observe folds one frame into the detector and returns the resulting state.
func (d *Detector) Observe(ctx context.Context, obs Observation) State {
	if d.state == StateStopped {
		return d.state
	}

	centers := Centers(MergeBoxes(obs.Boxes, d.cfg.MergeOverlap))
	moving := IsMoving(centers, d.last, d.cfg.MoveThreshold)
	d.last = centers
	if moving {
		d.counter++
	} else if d.counter > 0 {
		d.counter--
	}

	prev := d.state
	switch {
	case d.fired:
		if obs.At.Sub(d.firedAt) >= d.cfg.ShutdownDelay {
			d.state = StateStopped
		} else {
			d.state = StateShuttingDown
		}
	case moving && d.counter >= d.cfg.MotionFrames:
		d.fired = true
		d.firedAt = obs.At
		d.state = StateTriggered
		log.Printf("MotionDetector: confirmed movement, shutting down in %s", d.cfg.ShutdownDelay)
		d.fire(ctx, obs)
	case d.counter > 0:
		d.state = StateAccumulating
	default:
		d.state = StateIdle
	}
	if prev != d.state {
		log.WithField("counter", d.counter).Debugf("MotionDetector: %s -> %s", prev, d.state)
	}
	return d.state
}

// Wait blocks until an in-flight trigger has finished.
func (d *Detector) Wait() {
	d.inflight.Wait()
}

func (d *Detector) fire(ctx context.Context, obs Observation) {
	trigger := domain.CaptureTrigger{
		Timestamp:        obs.At.Format(time.RFC3339Nano),
		DistanceCm:       MinDistanceCm(obs.Boxes),
		ObjectCount:      len(obs.Boxes),
		CameraResolution: fmt.Sprintf("%dx%d", obs.Width, obs.Height),
		StationID:        d.cfg.StationID,
	}

	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		callCtx, cancel := context.WithTimeout(ctx, d.cfg.TriggerTimeout)
		defer cancel()

		status, err := d.sink.Fire(callCtx, trigger)
		switch {
		case err != nil:
			observability.MotionTriggersSent.WithLabelValues("failed").Inc()
			log.Printf("MotionDetector: capture trigger failed: %v", err)
		case status >= http.StatusBadRequest:
			observability.MotionTriggersSent.WithLabelValues("rejected").Inc()
			log.Printf("MotionDetector: booth answered capture trigger with %d", status)
		default:
			observability.MotionTriggersSent.WithLabelValues("sent").Inc()
			log.Printf("MotionDetector: capture trigger sent: %d", status)
		}
	}()
}
