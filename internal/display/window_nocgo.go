//go:build !cgo

package display

import (
	"errors"
	"image"
)

// ErrNoWindow is returned when the binary was built without cgo.
var ErrNoWindow = errors.New("display window requires cgo")

// Window is unavailable without cgo.
type Window struct{}

// NewWindow always fails without cgo; use Headless instead.
func NewWindow(title string) (*Window, error) {
	return nil, ErrNoWindow
}

// Show implements Sink.
func (w *Window) Show(img image.Image) (bool, error) { return false, ErrNoWindow }

// Close implements Sink.
func (w *Window) Close() error { return nil }
