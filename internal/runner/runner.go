package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/ironsheep/cartwatch/internal/capture"
	"github.com/ironsheep/cartwatch/internal/display"
	"github.com/ironsheep/cartwatch/internal/source"
	"github.com/ironsheep/cartwatch/internal/vision"
)

// statsInterval is how often throughput is logged at debug level.
const statsInterval = 10 * time.Second

// Stats summarizes a run.
type Stats struct {
	Frames      int
	Detections  int
	Snapshots   int
	WriteErrors int
	Elapsed     time.Duration

	// LastSnapshot is the path of the most recent snapshot, if any.
	LastSnapshot string
}

// FPS returns the average frames per second over the run.
func (s Stats) FPS() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Elapsed.Seconds()
}

// Runner ties a source, the analyzer, the recorder and a display together.
type Runner struct {
	src       source.Source
	analyzer  *vision.Analyzer
	recorder  *capture.Recorder
	sink      display.Sink
	clock     clock.Clock
	logger    *zap.SugaredLogger
	maxFrames int
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock sets the clock used for timing statistics.
func WithClock(c clock.Clock) Option {
	return func(r *Runner) { r.clock = c }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithMaxFrames stops the loop after n frames. Zero means no limit.
func WithMaxFrames(n int) Option {
	return func(r *Runner) { r.maxFrames = n }
}

// New creates a Runner. A nil sink behaves like display.Headless.
func New(src source.Source, analyzer *vision.Analyzer, recorder *capture.Recorder, sink display.Sink, opts ...Option) *Runner {
	r := &Runner{
		src:      src,
		analyzer: analyzer,
		recorder: recorder,
		sink:     sink,
		clock:    clock.New(),
		logger:   zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.sink == nil {
		r.sink = &display.Headless{}
	}
	return r
}

// Run processes frames until the loop stops. Reaching the end of the source,
// a quit key, an empty camera read and cancellation all end the run without
// error. Source and display failures are returned.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	start := r.clock.Now()
	lastReport := start
	framesAtReport := 0

	defer func() {
		r.logger.Infow("run finished",
			"frames", stats.Frames,
			"detections", stats.Detections,
			"snapshots", stats.Snapshots,
			"write_errors", stats.WriteErrors,
		)
	}()

	for {
		if err := ctx.Err(); err != nil {
			r.logger.Debugw("stopping", "reason", err)
			stats.Elapsed = r.clock.Since(start)
			return stats, nil
		}
		if r.maxFrames > 0 && stats.Frames >= r.maxFrames {
			stats.Elapsed = r.clock.Since(start)
			return stats, nil
		}

		frame, err := r.src.Next(ctx)
		if err != nil {
			stats.Elapsed = r.clock.Since(start)
			switch {
			case errors.Is(err, io.EOF):
				r.logger.Debug("source exhausted")
				return stats, nil
			case errors.Is(err, source.ErrNoFrame):
				r.logger.Warnw("no frame from source, stopping", "error", err)
				return stats, nil
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return stats, nil
			}
			return stats, fmt.Errorf("failed to read frame: %w", err)
		}

		res := r.analyzer.Analyze(frame)
		stats.Frames++
		stats.Detections += len(res.Detections)
		for _, d := range res.Detections {
			r.logger.Debugw("detection", "frame", stats.Frames, "detection", d.String())
		}

		if r.recorder != nil {
			path, err := r.recorder.Observe(frame, res.Detections)
			switch {
			case err != nil:
				stats.WriteErrors++
				r.logger.Errorw("snapshot failed", "error", err)
			case path != "":
				stats.Snapshots++
				stats.LastSnapshot = path
			}
		}

		if res.Annotated != nil {
			quit, err := r.sink.Show(res.Annotated)
			if err != nil {
				stats.Elapsed = r.clock.Since(start)
				return stats, fmt.Errorf("failed to display frame: %w", err)
			}
			if quit {
				r.logger.Info("quit requested")
				stats.Elapsed = r.clock.Since(start)
				return stats, nil
			}
		}

		if now := r.clock.Now(); now.Sub(lastReport) >= statsInterval {
			fps := float64(stats.Frames-framesAtReport) / now.Sub(lastReport).Seconds()
			r.logger.Debugw("throughput", "fps", fps, "frames", stats.Frames)
			lastReport = now
			framesAtReport = stats.Frames
		}
	}
}
