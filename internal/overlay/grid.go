package overlay

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/ironsheep/cartwatch/internal/vision"
)

// DefaultGridColor is a semi-transparent red, blended over the frame.
var DefaultGridColor = color.NRGBA{255, 0, 0, 128}

var (
	gridLabelColor = color.RGBA{255, 255, 255, 255}
	gridLabelBg    = color.RGBA{0, 0, 0, 180}
)

// Grid draws a coordinate grid for laying out exclusion zones by eye.
type Grid struct {
	Spacing int

	// Color is non-premultiplied; its alpha controls how much of the frame
	// shows through the lines.
	Color color.NRGBA

	// Labels prints "x,y" at every intersection.
	Labels bool
}

// Draw blends the grid lines onto img and, when enabled, the coordinate
// labels. A non-positive spacing draws nothing.
func (g Grid) Draw(img *image.RGBA) {
	if g.Spacing <= 0 {
		return
	}
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	dc := gg.NewContextForRGBA(img)

	// One pixel wide, pixel-aligned rectangles so each line covers exactly
	// one row or column.
	dc.SetColor(g.Color)
	for x := g.Spacing; x < width; x += g.Spacing {
		dc.DrawRectangle(float64(x), 0, 1, float64(height))
	}
	for y := g.Spacing; y < height; y += g.Spacing {
		dc.DrawRectangle(0, float64(y), float64(width), 1)
	}
	dc.Fill()

	if !g.Labels {
		return
	}

	dc.SetFontFace(vision.LabelFace(9))
	for y := g.Spacing; y < height; y += g.Spacing {
		for x := g.Spacing; x < width; x += g.Spacing {
			label := fmt.Sprintf("%d,%d", x, y)
			tw, th := dc.MeasureString(label)
			dc.SetColor(gridLabelBg)
			dc.DrawRectangle(float64(x+1), float64(y+1), tw+2, th+3)
			dc.Fill()
			dc.SetColor(gridLabelColor)
			dc.DrawString(label, float64(x+2), float64(y+2)+th)
		}
	}
}
