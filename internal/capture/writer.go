package capture

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 95

// Writer persists a snapshot.
type Writer interface {
	Write(path string, img image.Image) error
}

// JPEGWriter encodes snapshots as JPEG files.
type JPEGWriter struct {
	Quality int
}

// Write encodes img to path, replacing any existing file.
func (w JPEGWriter) Write(path string, img image.Image) error {
	quality := w.Quality
	if quality <= 0 {
		quality = DefaultQuality
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}
