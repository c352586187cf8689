package overlay

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/ironsheep/cartwatch/internal/config"
	"github.com/ironsheep/cartwatch/internal/vision"
)

// Bar geometry and text placement in pixels.
const (
	barHeight   = 60
	textMargin  = 20
	zoneLabel   = "AREA RESTRITA"
	zoneStroke  = 2.0
	titleSize   = 20.0
	footerSize  = 15.0
	zoneTagSize = 13.0
)

var (
	barColor    = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	titleColor  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	footerColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// HUD is the heads-up display drawn on every preview frame.
type HUD struct {
	Title  string
	Footer string
	Zones  []config.ExclusionZone

	titleFace  font.Face
	footerFace font.Face
	zoneFace   font.Face
}

// NewHUD creates a HUD showing the title, footer and restricted areas from
// cfg.
func NewHUD(cfg *config.Config) *HUD {
	return &HUD{
		Title:      cfg.Display.Title,
		Footer:     cfg.Display.Footer,
		Zones:      cfg.Zones,
		titleFace:  vision.LabelFace(titleSize),
		footerFace: vision.LabelFace(footerSize),
		zoneFace:   vision.LabelFace(zoneTagSize),
	}
}

// Draw paints the HUD onto img:
//   - a dark bar across the top 60 rows with the title
//   - a dark bar across the bottom 60 rows with the footer text
//   - every exclusion zone outlined in its color and tagged "AREA RESTRITA"
func (h *HUD) Draw(img *image.RGBA) {
	b := img.Bounds()
	if b.Empty() {
		return
	}
	w := float64(b.Dx())
	ht := float64(b.Dy())

	dc := gg.NewContextForRGBA(img)

	dc.SetColor(barColor)
	dc.DrawRectangle(0, 0, w, barHeight)
	dc.Fill()
	dc.DrawRectangle(0, ht-barHeight, w, barHeight)
	dc.Fill()

	if h.Title != "" {
		dc.SetFontFace(h.titleFace)
		dc.SetColor(titleColor)
		dc.DrawString(h.Title, textMargin, 40)
	}
	if h.Footer != "" {
		dc.SetFontFace(h.footerFace)
		dc.SetColor(footerColor)
		dc.DrawString(h.Footer, textMargin, ht-30)
	}

	dc.SetFontFace(h.zoneFace)
	dc.SetLineWidth(zoneStroke)
	for _, z := range h.Zones {
		r := z.Rect()
		dc.SetColor(z.Color.RGBA)
		dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
		dc.Stroke()
		dc.DrawString(zoneLabel, float64(r.Min.X+10), float64(r.Min.Y+20))
	}
}
