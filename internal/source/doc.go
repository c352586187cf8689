// Package source supplies frames to the detection loop.
//
// Every source implements Source. Next blocks until a frame is available and
// returns io.EOF once a finite source is exhausted.
//
//   - Camera reads a video device or a video file through OpenCV (gocv). It
//     needs cgo; without it OpenCamera and OpenVideo report
//     ErrDeviceUnavailable.
//   - Directory replays still images from a folder in name order, which is
//     how the detector is tuned and tested without hardware.
//
// # Image Cache
//
// Directory decodes each file once and keeps it in an ImageCache, so looping
// over a small set of test images does not hit the disk again. The cache is
// safe for concurrent use.
package source
