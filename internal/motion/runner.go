package motion

import (
	"context"
	"image"
	"time"

	log "github.com/sirupsen/logrus"
)

type FrameSource interface {
	Next(ctx context.Context) (image.Image, error)
}

// Runner pulls frames one at a time and feeds them through the model and detector.
type Runner struct {
	source   FrameSource
	model    *BackgroundModel
	detector *Detector
	interval time.Duration
	now      func() time.Time
}

func NewRunner(source FrameSource, model *BackgroundModel, detector *Detector, interval time.Duration) *Runner {
	return &Runner{source: source, model: model, detector: detector, interval: interval, now: time.Now}
}

// Run returns once the detector stops or ctx is cancelled, after any in-flight trigger completes.
func (r *Runner) Run(ctx context.Context) error {
	defer r.detector.Wait()
	log.Println("MotionRunner: starting motion detection")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("MotionRunner: context cancelled, stopping.")
			return ctx.Err()
		case <-ticker.C:
		}

		img, err := r.source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("MotionRunner: frame read failed: %v", err)
			continue
		}

		b := img.Bounds()
		state := r.detector.Observe(ctx, Observation{
			Boxes:  r.model.Apply(img),
			Width:  b.Dx(),
			Height: b.Dy(),
			At:     r.now(),
		})
		if state == StateStopped {
			log.Println("MotionRunner: system shutdown due to confirmed movement")
			return nil
		}
	}
}
