package source

import (
	"context"
	"errors"
	"image"
)

var (
	// ErrDeviceUnavailable means the capture device could not be opened.
	// It is fatal for a run.
	ErrDeviceUnavailable = errors.New("capture device unavailable")

	// ErrNoFrame means the device returned an empty read.
	ErrNoFrame = errors.New("no frame available")
)

// Source produces frames one at a time.
type Source interface {
	// Next returns the next frame. The caller owns the image.
	Next(ctx context.Context) (image.Image, error)

	Close() error
}
