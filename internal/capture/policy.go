package capture

import (
	"fmt"
	"time"

	"github.com/ironsheep/cartwatch/internal/vision"
)

// State is the capture memory carried from frame to frame.
type State struct {
	// LastSave is when the last snapshot was written. Zero means never.
	LastSave time.Time

	// Saved is set once any snapshot has been written and never cleared.
	Saved bool
}

// Decision is the outcome of a Policy for one frame.
type Decision struct {
	Save     bool
	Filename string

	// Target names the detection the file is named after, if any.
	Target string
}

// Policy decides whether the current frame should be saved.
type Policy interface {
	Decide(dets []vision.Detection, now time.Time, st State) Decision
}

// timestampLayout renders as YYYYMMDD_HHMMSS.
const timestampLayout = "20060102_150405"

// DefaultCooldown is the interval used when none is configured.
const DefaultCooldown = 3 * time.Second

// Cooldown saves a frame when something was detected and strictly more than
// Interval has passed since the last save.
type Cooldown struct {
	Interval time.Duration
}

// Decide implements Policy.
func (c Cooldown) Decide(dets []vision.Detection, now time.Time, st State) Decision {
	if len(dets) == 0 {
		return Decision{}
	}
	if !st.LastSave.IsZero() && now.Sub(st.LastSave) <= c.Interval {
		return Decision{}
	}

	target := dets[0].Target
	return Decision{
		Save:     true,
		Filename: fmt.Sprintf("detectado_%s_%s.jpg", target, now.Format(timestampLayout)),
		Target:   target,
	}
}

// SingleShot saves the first frame with a detection and nothing afterward.
type SingleShot struct{}

// Decide implements Policy.
func (SingleShot) Decide(dets []vision.Detection, now time.Time, st State) Decision {
	if len(dets) == 0 || st.Saved {
		return Decision{}
	}
	return Decision{
		Save:     true,
		Filename: fmt.Sprintf("print_carrinho_%d.jpg", now.Unix()),
		Target:   dets[0].Target,
	}
}

// Apply returns the state after d has been carried out at now. A decision
// that does not save leaves the state as is.
func Apply(d Decision, now time.Time, st State) State {
	if !d.Save {
		return st
	}
	return State{LastSave: now, Saved: true}
}
