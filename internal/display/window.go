//go:build cgo

package display

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Window shows frames in an OpenCV window.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a window with the given title.
func NewWindow(title string) (*Window, error) {
	return &Window{win: gocv.NewWindow(title)}, nil
}

// Show converts img to a Mat, displays it and polls the keyboard for 1ms.
func (w *Window) Show(img image.Image) (bool, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return false, fmt.Errorf("failed to convert frame: %w", err)
	}
	defer mat.Close()

	w.win.IMShow(mat)
	return IsQuitKey(w.win.WaitKey(1)), nil
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}
