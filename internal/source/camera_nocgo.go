//go:build !cgo

package source

import (
	"context"
	"fmt"
	"image"
)

// Camera is unavailable in builds without cgo.
type Camera struct{}

// OpenCamera always fails without cgo.
func OpenCamera(device, width, height int) (*Camera, error) {
	return nil, fmt.Errorf("%w: device %d: built without cgo", ErrDeviceUnavailable, device)
}

// OpenVideo always fails without cgo.
func OpenVideo(path string) (*Camera, error) {
	return nil, fmt.Errorf("%w: %s: built without cgo", ErrDeviceUnavailable, path)
}

// Next implements Source.
func (c *Camera) Next(ctx context.Context) (image.Image, error) {
	return nil, ErrDeviceUnavailable
}

// Close implements Source.
func (c *Camera) Close() error { return nil }
