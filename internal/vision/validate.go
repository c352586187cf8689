package vision

import (
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/cartwatch/internal/config"
)

// Detection is one validated box found in the current frame.
type Detection struct {
	// Box is the bounding rectangle in frame coordinates.
	Box image.Rectangle `json:"box"`

	// Target is the name of the ColorTarget whose mask produced the box.
	Target string `json:"target"`

	// Aspect is Box width divided by Box height.
	Aspect float64 `json:"aspect"`

	// Area is Box width times Box height, in pixels.
	Area int `json:"area"`
}

// Label returns the text drawn next to the box.
func (d Detection) Label() string {
	return strings.ToUpper(d.Target)
}

// String implements fmt.Stringer.
func (d Detection) String() string {
	return fmt.Sprintf("%s at (%d,%d) %dx%d", d.Target, d.Box.Min.X, d.Box.Min.Y, d.Box.Dx(), d.Box.Dy())
}

// Verdict tells why a candidate box was accepted or rejected.
type Verdict int

const (
	Accepted Verdict = iota
	InExclusionZone
	BadAspect
	TooSmall
)

func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "accepted"
	case InExclusionZone:
		return "in exclusion zone"
	case BadAspect:
		return "aspect ratio out of range"
	case TooSmall:
		return "area below minimum"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// Validate runs the checks on a candidate box, in order:
//
//  1. the box's top-left corner must not lie inside any zone
//  2. width/height must be strictly between rule.MinAspect and rule.MaxAspect
//  3. width*height must be at least rule.MinArea
//
// The returned Detection carries the computed aspect and area; its Target is
// left empty for the caller to fill in.
func Validate(box image.Rectangle, zones []config.ExclusionZone, rule config.ValidationRule) (Detection, Verdict) {
	det := Detection{Box: box}

	for _, z := range zones {
		if z.Contains(box.Min) {
			return det, InExclusionZone
		}
	}

	w, h := box.Dx(), box.Dy()
	if h <= 0 || w <= 0 {
		return det, BadAspect
	}

	det.Aspect = float64(w) / float64(h)
	if !(det.Aspect > rule.MinAspect && det.Aspect < rule.MaxAspect) {
		return det, BadAspect
	}

	det.Area = w * h
	if det.Area < rule.MinArea {
		return det, TooSmall
	}

	return det, Accepted
}
