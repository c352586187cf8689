// Package overlay draws the static parts of the preview window, plus an
// optional coordinate grid for placing restricted areas.
//
// Everything here draws in place on an *image.RGBA that the caller already
// owns, typically the annotated copy produced by vision.Analyzer. Snapshots
// never carry the overlay.
package overlay
