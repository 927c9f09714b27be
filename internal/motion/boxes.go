// Package motion confirms a vehicle approaching the booth from a camera feed and fires one capture trigger.
package motion

const (
	KnownWidthCm    = 20.0
	FocalLengthPx   = 500.0
	MinContourArea  = 1000
	MergeOverlap    = 0.3
	MoveThresholdPx = 20
	MotionFrames    = 10
	FrameBufferSize = 5
	DiffThreshold   = 25
)

type Point struct {
	X, Y int
}

// Box is an axis-aligned bounding rectangle in pixel coordinates.
type Box struct {
	X, Y, W, H int
}

func (b Box) Center() Point {
	return Point{X: b.X + b.W/2, Y: b.Y + b.H/2}
}

func (b Box) Area() int {
	return b.W * b.H
}

// IoU is the intersection over union of two boxes.
func IoU(a, b Box) float64 {
	x1, y1 := max(a.X, b.X), max(a.Y, b.Y)
	x2, y2 := min(a.X+a.W, b.X+b.W), min(a.Y+a.H, b.Y+b.H)
	if x2 <= x1 || y2 <= y1 {
		return 0
	}
	inter := (x2 - x1) * (y2 - y1)
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// MergeBoxes is non-max suppression with equal scores: earlier boxes win, and any later box
// overlapping a kept one by more than overlap is dropped.
func MergeBoxes(boxes []Box, overlap float64) []Box {
	kept := make([]Box, 0, len(boxes))
next:
	for _, b := range boxes {
		for _, k := range kept {
			if IoU(b, k) > overlap {
				continue next
			}
		}
		kept = append(kept, b)
	}
	return kept
}

func Centers(boxes []Box) []Point {
	out := make([]Point, 0, len(boxes))
	for _, b := range boxes {
		out = append(out, b.Center())
	}
	return out
}

// IsMoving reports whether any current center is more than threshold pixels away from any
// previous center along either axis. With no previous centers nothing is moving.
func IsMoving(current, previous []Point, threshold int) bool {
	if len(previous) == 0 {
		return false
	}
	for _, c := range current {
		for _, p := range previous {
			if abs(c.X-p.X) > threshold || abs(c.Y-p.Y) > threshold {
				return true
			}
		}
	}
	return false
}

// EstimateDistanceCm uses the pinhole model with a known object width. Telemetry only.
func EstimateDistanceCm(pixelWidth int) (float64, bool) {
	if pixelWidth <= 0 {
		return 0, false
	}
	return KnownWidthCm * FocalLengthPx / float64(pixelWidth), true
}

// MinDistanceCm is the closest estimate over boxes, or nil when none has a usable width.
func MinDistanceCm(boxes []Box) *float64 {
	var best *float64
	for _, b := range boxes {
		d, ok := EstimateDistanceCm(b.W)
		if !ok {
			continue
		}
		if best == nil || d < *best {
			v := d
			best = &v
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
