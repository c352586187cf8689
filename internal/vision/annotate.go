package vision

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ironsheep/cartwatch/internal/config"
)

// Outline widths in pixels and label font size in points.
const (
	highlightWidth = 3.0
	outlineWidth   = 2.0
	labelSize      = 16.0
)

var (
	labelText   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	labelShadow = color.RGBA{A: 255}
)

var labelFont *truetype.Font

func init() {
	var err error
	labelFont, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// LabelFace returns a new face of the label font at the given size.
func LabelFace(size float64) font.Face {
	return truetype.NewFace(labelFont, &truetype.Options{Size: size})
}

// Canvas is a drawable copy of a frame.
type Canvas struct {
	dc   *gg.Context
	face font.Face
}

// NewCanvas copies frame into a new RGBA image. Drawing on the canvas never
// touches frame.
func NewCanvas(frame image.Image, face font.Face) *Canvas {
	if face == nil {
		face = LabelFace(labelSize)
	}
	dc := gg.NewContextForImage(frame)
	dc.SetFontFace(face)
	return &Canvas{dc: dc, face: face}
}

// Image returns the canvas pixels.
func (c *Canvas) Image() *image.RGBA {
	return c.dc.Image().(*image.RGBA)
}

// Annotate draws a detection: a thick highlight outline with the thinner
// target-colored outline on top, and the upper-cased target name above the
// box as white text over a dark shadow.
func (c *Canvas) Annotate(det Detection, target config.ColorTarget) {
	x := float64(det.Box.Min.X)
	y := float64(det.Box.Min.Y)
	w := float64(det.Box.Dx())
	h := float64(det.Box.Dy())

	c.strokeRect(x, y, w, h, target.Highlight.RGBA, highlightWidth)
	c.strokeRect(x, y, w, h, target.Color.RGBA, outlineWidth)

	label := det.Label()

	// The shadow is drawn a few times around its anchor to fake a bold stroke.
	c.dc.SetColor(labelShadow)
	for _, d := range [][2]float64{{0, 0}, {1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		c.dc.DrawString(label, x+2+d[0], y-12+d[1])
	}
	c.dc.SetColor(labelText)
	c.dc.DrawString(label, x, y-10)
}

func (c *Canvas) strokeRect(x, y, w, h float64, clr color.Color, width float64) {
	c.dc.SetColor(clr)
	c.dc.SetLineWidth(width)
	c.dc.DrawRectangle(x, y, w, h)
	c.dc.Stroke()
}
