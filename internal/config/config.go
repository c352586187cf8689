package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/multierr"
)

// ErrInvalid is wrapped by every validation failure returned from Validate.
var ErrInvalid = errors.New("invalid configuration")

// Capture policy names accepted in CaptureConfig.Policy.
const (
	PolicyCooldown   = "cooldown"
	PolicySingleShot = "single-shot"
)

const (
	maxHue     = 179
	maxChannel = 255
)

// HSV is a color-space triplet in 8-bit HSV units (H 0-179, S and V 0-255).
//
// In JSON it is written as a three element array: [h, s, v].
type HSV struct {
	H int
	S int
	V int
}

// UnmarshalJSON decodes an [h, s, v] array.
func (c *HSV) UnmarshalJSON(data []byte) error {
	var v []int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("hsv triplet must be [h, s, v]: %w", err)
	}
	if len(v) != 3 {
		return fmt.Errorf("hsv triplet must have 3 values, got %d", len(v))
	}
	c.H, c.S, c.V = v[0], v[1], v[2]
	return nil
}

// MarshalJSON encodes the triplet as an [h, s, v] array.
func (c HSV) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{c.H, c.S, c.V})
}

// Color is an opaque RGB display color. In JSON it is a hex string "#RRGGBB".
type Color struct {
	color.RGBA
}

// RGB builds an opaque Color from 8-bit components.
func RGB(r, g, b uint8) Color {
	return Color{color.RGBA{R: r, G: g, B: b, A: 255}}
}

// UnmarshalJSON parses a "#RRGGBB" string.
func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("color must be a hex string: %w", err)
	}
	parsed, err := colorful.Hex(s)
	if err != nil {
		return fmt.Errorf("color %q: %w", s, err)
	}
	r, g, b := parsed.RGB255()
	*c = RGB(r, g, b)
	return nil
}

// MarshalJSON writes the color as "#RRGGBB".
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B))
}

// ColorTarget is one color class to segment, e.g. the blue cart.
type ColorTarget struct {
	// Name identifies the target in labels and snapshot file names.
	Name string `json:"name"`

	// Lower and Upper are the inclusive HSV bounds of the target color.
	Lower HSV `json:"lower"`
	Upper HSV `json:"upper"`

	// Color is the inner outline color drawn around detections.
	Color Color `json:"color"`

	// Highlight is the thicker outline drawn underneath Color.
	Highlight Color `json:"highlight"`
}

// ExclusionZone is a rectangle of the frame in which detections are suppressed.
//
// (X1, Y1) is inclusive and (X2, Y2) exclusive.
type ExclusionZone struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`

	// Color is used when the zone is outlined on the display.
	Color Color `json:"color"`
}

// Rect returns the zone as an image.Rectangle.
func (z ExclusionZone) Rect() image.Rectangle {
	return image.Rect(z.X1, z.Y1, z.X2, z.Y2)
}

// Contains reports whether p lies inside the zone.
func (z ExclusionZone) Contains(p image.Point) bool {
	return p.X >= z.X1 && p.X < z.X2 && p.Y >= z.Y1 && p.Y < z.Y2
}

// ValidationRule holds the geometric checks applied to candidate boxes.
type ValidationRule struct {
	// MinArea is the smallest accepted box area in pixels (inclusive).
	MinArea int `json:"min_area"`

	// MinAspect and MaxAspect bound width/height, both exclusive.
	MinAspect float64 `json:"min_aspect"`
	MaxAspect float64 `json:"max_aspect"`
}

// CaptureConfig selects the snapshot policy and where snapshots go.
type CaptureConfig struct {
	Policy          string  `json:"policy"`
	CooldownSeconds float64 `json:"cooldown_seconds"`
	OutputDir       string  `json:"output_dir"`
	JPEGQuality     int     `json:"jpeg_quality"`
}

// Cooldown returns CooldownSeconds as a time.Duration.
func (c CaptureConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds * float64(time.Second))
}

// CameraConfig describes the video device the frames are read from.
type CameraConfig struct {
	Device int `json:"device"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DisplayConfig controls the preview window.
type DisplayConfig struct {
	Title  string `json:"title"`
	Footer string `json:"footer"`
	HUD    bool   `json:"hud"`
}

// Config is the complete runtime configuration.
type Config struct {
	Targets []ColorTarget   `json:"targets"`
	Zones   []ExclusionZone `json:"zones"`
	Rule    ValidationRule  `json:"rule"`
	Capture CaptureConfig   `json:"capture"`
	Camera  CameraConfig    `json:"camera"`
	Display DisplayConfig   `json:"display"`

	// Parallel runs per-target segmentation concurrently.
	Parallel bool `json:"parallel"`
}

// Default returns the configuration used by the toy cart setup: a blue and a
// yellow cart, one restricted area in the top-left corner, a 1200 px minimum
// area, width/height between 1.3 and 2.8 and one snapshot every 3 seconds.
func Default() *Config {
	return &Config{
		Targets: []ColorTarget{
			{
				Name:      "carro_azul",
				Lower:     HSV{H: 100, S: 150, V: 50},
				Upper:     HSV{H: 140, S: 255, V: 255},
				Color:     RGB(0, 0, 255),
				Highlight: RGB(0, 255, 255),
			},
			{
				Name:      "carro_amarelo",
				Lower:     HSV{H: 20, S: 100, V: 100},
				Upper:     HSV{H: 40, S: 255, V: 255},
				Color:     RGB(255, 255, 0),
				Highlight: RGB(255, 0, 255),
			},
		},
		Zones: []ExclusionZone{
			{X1: 0, Y1: 0, X2: 300, Y2: 250, Color: RGB(255, 0, 0)},
		},
		Rule: ValidationRule{
			MinArea:   1200,
			MinAspect: 1.3,
			MaxAspect: 2.8,
		},
		Capture: CaptureConfig{
			Policy:          PolicyCooldown,
			CooldownSeconds: 3,
			OutputDir:       ".",
			JPEGQuality:     95,
		},
		Camera: CameraConfig{
			Device: 0,
			Width:  640,
			Height: 480,
		},
		Display: DisplayConfig{
			Title:  "DETECTOR DE CARRINHOS",
			Footer: "Press Q to quit",
			HUD:    true,
		},
	}
}

// Load builds a Config from defaults, the JSON file at path and CARTWATCH_*
// environment overrides, then validates it.
//
// Parameters:
//   - path: JSON config file. An empty path skips the file.
//
// Returns:
//   - *Config: The merged, validated configuration.
//   - error: Non-nil if the file cannot be read, parsed or validated.
//
// Fields missing from the file keep their defaults. A "targets" or "zones"
// list in the file replaces the default list as a whole.
//
// # Errors
//
// Unknown keys in the file are rejected so that a misspelt field is not
// silently ignored. Validation errors from every field are combined.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Lists from the file replace the defaults instead of merging into them.
		targets, zones := cfg.Targets, cfg.Zones
		cfg.Targets, cfg.Zones = nil, nil
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if dec.More() {
			return nil, fmt.Errorf("failed to parse config %s: trailing data after object", path)
		}
		if cfg.Targets == nil {
			cfg.Targets = targets
		}
		if cfg.Zones == nil {
			cfg.Zones = zones
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field and reports all problems at once. Each
// reported error wraps ErrInvalid.
func (c *Config) Validate() error {
	var errs error
	invalid := func(format string, args ...interface{}) {
		errs = multierr.Append(errs, fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...)))
	}

	if len(c.Targets) == 0 {
		invalid("at least one color target is required")
	}
	seen := make(map[string]bool, len(c.Targets))
	for i, t := range c.Targets {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			invalid("target %d: name is empty", i)
		} else if strings.ContainsAny(name, `/\ `) {
			invalid("target %q: name must not contain spaces or path separators", name)
		} else if seen[name] {
			invalid("target %q: duplicate name", name)
		}
		seen[name] = true

		for _, msg := range checkRange(t.Lower, t.Upper) {
			invalid("target %q: %s", t.Name, msg)
		}
	}

	for i, z := range c.Zones {
		if z.X1 >= z.X2 || z.Y1 >= z.Y2 {
			invalid("zone %d: (%d,%d)-(%d,%d) requires x1 < x2 and y1 < y2", i, z.X1, z.Y1, z.X2, z.Y2)
		}
	}

	if c.Rule.MinArea <= 0 {
		invalid("rule: min_area must be positive, got %d", c.Rule.MinArea)
	}
	if c.Rule.MinAspect <= 0 {
		invalid("rule: min_aspect must be positive, got %g", c.Rule.MinAspect)
	}
	if c.Rule.MinAspect >= c.Rule.MaxAspect {
		invalid("rule: min_aspect %g must be below max_aspect %g", c.Rule.MinAspect, c.Rule.MaxAspect)
	}

	switch c.Capture.Policy {
	case PolicyCooldown:
		if c.Capture.CooldownSeconds <= 0 {
			invalid("capture: cooldown_seconds must be positive, got %g", c.Capture.CooldownSeconds)
		}
	case PolicySingleShot:
	default:
		invalid("capture: unknown policy %q (want %q or %q)", c.Capture.Policy, PolicyCooldown, PolicySingleShot)
	}
	if c.Capture.JPEGQuality < 1 || c.Capture.JPEGQuality > 100 {
		invalid("capture: jpeg_quality must be within 1-100, got %d", c.Capture.JPEGQuality)
	}

	if c.Camera.Device < 0 {
		invalid("camera: device must not be negative, got %d", c.Camera.Device)
	}
	if c.Camera.Width < 0 || c.Camera.Height < 0 {
		invalid("camera: negative frame size %dx%d", c.Camera.Width, c.Camera.Height)
	}

	return errs
}

// checkRange returns one message per out-of-range or inverted channel.
func checkRange(lower, upper HSV) []string {
	var msgs []string
	channels := []struct {
		name          string
		lo, hi, limit int
	}{
		{"H", lower.H, upper.H, maxHue},
		{"S", lower.S, upper.S, maxChannel},
		{"V", lower.V, upper.V, maxChannel},
	}
	for _, ch := range channels {
		if ch.lo < 0 || ch.lo > ch.limit || ch.hi < 0 || ch.hi > ch.limit {
			msgs = append(msgs, fmt.Sprintf("%s bounds [%d,%d] outside 0-%d", ch.name, ch.lo, ch.hi, ch.limit))
			continue
		}
		if ch.lo > ch.hi {
			msgs = append(msgs, fmt.Sprintf("%s lower bound %d above upper bound %d", ch.name, ch.lo, ch.hi))
		}
	}
	return msgs
}
