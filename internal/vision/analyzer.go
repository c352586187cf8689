package vision

import (
	"image"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/cartwatch/internal/config"
)

// Result is the outcome of analyzing one frame.
type Result struct {
	// Detections lists the accepted boxes, grouped by target in configuration
	// order.
	Detections []Detection

	// Annotated is a copy of the frame with the detections drawn on it.
	// The caller owns it and may modify it freely.
	Annotated *image.RGBA
}

// Analyzer runs the detection pipeline with a fixed configuration.
//
// An Analyzer holds no per-frame state and is safe to reuse for every frame.
// Analyze itself must not be called concurrently when a backdrop function
// with side effects is installed.
type Analyzer struct {
	targets  []config.ColorTarget
	zones    []config.ExclusionZone
	rule     config.ValidationRule
	parallel bool
	backdrop func(*image.RGBA)
	face     font.Face
	logger   *zap.SugaredLogger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithParallel segments each target on its own goroutine. The detections
// are identical to the sequential path.
func WithParallel(parallel bool) Option {
	return func(a *Analyzer) { a.parallel = parallel }
}

// WithBackdrop installs a function that draws on the annotated copy before
// any detection is drawn, e.g. a static HUD.
func WithBackdrop(fn func(*image.RGBA)) Option {
	return func(a *Analyzer) { a.backdrop = fn }
}

// WithLabelFace overrides the font used for detection labels.
func WithLabelFace(face font.Face) Option {
	return func(a *Analyzer) { a.face = face }
}

// WithLogger sets the logger used for per-candidate debug output.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(a *Analyzer) { a.logger = logger }
}

// New creates an Analyzer for the given targets, zones and rule. The
// configuration is expected to have passed config.Validate.
func New(targets []config.ColorTarget, zones []config.ExclusionZone, rule config.ValidationRule, opts ...Option) *Analyzer {
	a := &Analyzer{
		targets: targets,
		zones:   zones,
		rule:    rule,
		logger:  zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.face == nil {
		a.face = LabelFace(labelSize)
	}
	return a
}

// NewFromConfig creates an Analyzer from a validated Config.
func NewFromConfig(cfg *config.Config, opts ...Option) *Analyzer {
	opts = append([]Option{WithParallel(cfg.Parallel)}, opts...)
	return New(cfg.Targets, cfg.Zones, cfg.Rule, opts...)
}

// Analyze is a convenience wrapper running a default Analyzer once.
func Analyze(frame image.Image, targets []config.ColorTarget, zones []config.ExclusionZone, rule config.ValidationRule) *Result {
	return New(targets, zones, rule).Analyze(frame)
}

// Analyze finds the validated detections in frame and draws them onto a copy.
//
// Each target is thresholded in HSV, cleaned with a 5x5 open and close, and
// its external contours are checked against the rule and exclusion zones.
//
// Parameters:
//   - frame: Any image.Image. It is read only and never modified.
//
// Returns:
//   - *Result: Detections in target order, then in contour order within a
//     target. Annotated is a fresh RGBA copy of frame with the backdrop,
//     outlines and labels drawn on it.
//
// A nil or empty frame yields an empty result with a nil Annotated image.
func (a *Analyzer) Analyze(frame image.Image) *Result {
	if frame == nil || frame.Bounds().Empty() {
		return &Result{}
	}

	hsv := ToHSV(frame)
	offset := frame.Bounds().Min

	perTarget := make([][]Detection, len(a.targets))
	if a.parallel && len(a.targets) > 1 {
		var g errgroup.Group
		for i := range a.targets {
			i := i
			g.Go(func() error {
				perTarget[i] = a.detect(hsv, offset, a.targets[i])
				return nil
			})
		}
		// detect never fails; Wait only joins the goroutines.
		_ = g.Wait()
	} else {
		for i, t := range a.targets {
			perTarget[i] = a.detect(hsv, offset, t)
		}
	}

	canvas := NewCanvas(frame, a.face)
	if a.backdrop != nil {
		a.backdrop(canvas.Image())
	}

	detections := make([]Detection, 0)
	for i, dets := range perTarget {
		for _, d := range dets {
			canvas.Annotate(d, a.targets[i])
		}
		detections = append(detections, dets...)
	}

	return &Result{
		Detections: detections,
		Annotated:  canvas.Image(),
	}
}

// detect runs masking, cleanup, contour extraction and validation for one
// target. offset shifts mask coordinates back into frame coordinates.
func (a *Analyzer) detect(hsv *HSVImage, offset image.Point, target config.ColorTarget) []Detection {
	mask := Clean(InRange(hsv, target.Lower, target.Upper))

	var out []Detection
	for _, c := range FindContours(mask) {
		box := c.BoundingRect().Add(offset)
		det, verdict := Validate(box, a.zones, a.rule)
		if verdict != Accepted {
			a.logger.Debugw("candidate rejected", "target", target.Name, "box", box, "reason", verdict.String())
			continue
		}
		det.Target = target.Name
		out = append(out, det)
	}
	return out
}
