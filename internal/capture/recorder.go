package capture

import (
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/ironsheep/cartwatch/internal/config"
	"github.com/ironsheep/cartwatch/internal/vision"
)

// Recorder applies a Policy to each frame and writes the snapshots it asks
// for. It is safe for concurrent use; decisions and state updates for one
// frame happen under a single lock so two callers can never both claim the
// same cooldown window.
type Recorder struct {
	mu     sync.Mutex
	state  State
	policy Policy
	writer Writer
	dir    string
	clock  clock.Clock
	logger *zap.SugaredLogger
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithClock sets the time source. Tests use clock.NewMock.
func WithClock(c clock.Clock) RecorderOption {
	return func(r *Recorder) { r.clock = c }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.SugaredLogger) RecorderOption {
	return func(r *Recorder) { r.logger = logger }
}

// WithState seeds the recorder with an existing state.
func WithState(st State) RecorderOption {
	return func(r *Recorder) { r.state = st }
}

// NewRecorder creates a Recorder writing into dir.
func NewRecorder(policy Policy, writer Writer, dir string, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		policy: policy,
		writer: writer,
		dir:    dir,
		clock:  clock.New(),
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PolicyFromConfig returns the Policy named by cfg.
func PolicyFromConfig(cfg config.CaptureConfig) (Policy, error) {
	switch cfg.Policy {
	case config.PolicyCooldown, "":
		interval := cfg.Cooldown()
		if interval <= 0 {
			interval = DefaultCooldown
		}
		return Cooldown{Interval: interval}, nil
	case config.PolicySingleShot:
		return SingleShot{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown capture policy %q", config.ErrInvalid, cfg.Policy)
	}
}

// FromConfig builds a Recorder with a JPEGWriter from the capture section of
// the configuration.
func FromConfig(cfg config.CaptureConfig, opts ...RecorderOption) (*Recorder, error) {
	policy, err := PolicyFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return NewRecorder(policy, JPEGWriter{Quality: cfg.JPEGQuality}, cfg.OutputDir, opts...), nil
}

// Observe runs the policy for one frame. When it asks for a snapshot, frame
// is written and the path is returned.
//
// Parameters:
//   - frame: The unannotated frame the detections were found in.
//   - dets: The frame's detections. An empty slice never saves.
//
// Returns:
//   - string: The written file's path, or "" when no snapshot was due.
//   - error: Non-nil if the snapshot could not be encoded or written.
//
// # Errors
//
// On a write error the state is left untouched, so the next frame with a
// detection will try again.
func (r *Recorder) Observe(frame image.Image, dets []vision.Detection) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	d := r.policy.Decide(dets, now, r.state)
	if !d.Save {
		return "", nil
	}

	path := filepath.Join(r.dir, d.Filename)
	if err := r.writer.Write(path, frame); err != nil {
		return "", fmt.Errorf("snapshot %s: %w", path, err)
	}

	r.state = Apply(d, now, r.state)
	r.logger.Infow("snapshot saved", "path", path, "target", d.Target, "detections", len(dets))
	return path, nil
}

// State returns a copy of the current capture state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}
