//go:build cgo

package source

import (
	"context"
	"fmt"
	"image"
	"sync"

	"go.uber.org/multierr"
	"gocv.io/x/gocv"
)

// Camera reads frames from an OpenCV capture: a webcam or a video file.
type Camera struct {
	mu   sync.Mutex
	vc   *gocv.VideoCapture
	mat  gocv.Mat
	name string
}

// OpenCamera opens video device and asks it for width x height frames.
// Zero sizes keep the device default.
func OpenCamera(device, width, height int) (*Camera, error) {
	vc, err := gocv.VideoCaptureDevice(device)
	if err != nil {
		release(vc)
		return nil, fmt.Errorf("%w: device %d: %v", ErrDeviceUnavailable, device, err)
	}
	if !vc.IsOpened() {
		release(vc)
		return nil, fmt.Errorf("%w: device %d did not open", ErrDeviceUnavailable, device)
	}
	if width > 0 && height > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(width))
		vc.Set(gocv.VideoCaptureFrameHeight, float64(height))
	}
	return &Camera{vc: vc, mat: gocv.NewMat(), name: fmt.Sprintf("device %d", device)}, nil
}

// OpenVideo opens a video file or stream URL.
func OpenVideo(path string) (*Camera, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		release(vc)
		return nil, fmt.Errorf("%w: %s: %v", ErrDeviceUnavailable, path, err)
	}
	if !vc.IsOpened() {
		release(vc)
		return nil, fmt.Errorf("%w: %s did not open", ErrDeviceUnavailable, path)
	}
	return &Camera{vc: vc, mat: gocv.NewMat(), name: path}, nil
}

// release frees a capture that failed to open. gocv allocates the native
// handle before trying the device, so it must be closed on every error path.
func release(vc *gocv.VideoCapture) {
	if vc != nil {
		_ = vc.Close()
	}
}

// Next implements Source. An empty read returns ErrNoFrame, which ends the
// run the same way a disconnected camera does.
func (c *Camera) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ok := c.vc.Read(&c.mat); !ok || c.mat.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrNoFrame, c.name)
	}

	img, err := c.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	return img, nil
}

// Close releases the device and the frame buffer.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return multierr.Combine(c.mat.Close(), c.vc.Close())
}
