package vision

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/cartwatch/internal/config"
)

// HSVImage holds a frame converted to 8-bit HSV.
//
// Pixels are stored row-major as H, S, V triplets. The rectangle always
// starts at (0, 0), whatever the bounds of the source frame were.
type HSVImage struct {
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

// At returns the HSV triplet at (x, y).
func (h *HSVImage) At(x, y int) config.HSV {
	i := y*h.Stride + x*3
	return config.HSV{H: int(h.Pix[i]), S: int(h.Pix[i+1]), V: int(h.Pix[i+2])}
}

// ToHSV converts an image to HSV.
//
// The scaling follows the common 8-bit convention so that thresholds tuned
// with other camera tools carry over unchanged:
//   - H = hue in degrees / 2 (0-179)
//   - S = saturation * 255
//   - V = value * 255
//
// Fully transparent pixels convert to black.
func ToHSV(img image.Image) *HSVImage {
	src := imaging.Clone(img)
	width := src.Rect.Dx()
	height := src.Rect.Dy()

	out := &HSVImage{
		Pix:    make([]uint8, width*height*3),
		Stride: width * 3,
		Rect:   image.Rect(0, 0, width, height),
	}

	for y := 0; y < height; y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < width; x++ {
			p := row[x*4 : x*4+4]
			if p[3] == 0 {
				continue
			}
			h, s, v := rgbToHSV(p[0], p[1], p[2])
			i := y*out.Stride + x*3
			out.Pix[i] = h
			out.Pix[i+1] = s
			out.Pix[i+2] = v
		}
	}

	return out
}

// rgbToHSV converts one 8-bit RGB pixel to 8-bit HSV.
func rgbToHSV(r, g, b uint8) (uint8, uint8, uint8) {
	c := colorful.Color{R: float64(r) / 255.0, G: float64(g) / 255.0, B: float64(b) / 255.0}
	h, s, v := c.Hsv()

	hue := int(math.Round(h/2)) % 180
	return uint8(hue), uint8(math.Round(s * 255)), uint8(math.Round(v * 255))
}
