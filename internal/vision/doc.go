// Package vision implements the color-based frame analyzer.
//
// A frame goes through a fixed pipeline, once per configured ColorTarget:
//
//  1. Color-space conversion: RGB to 8-bit HSV (H 0-179, S/V 0-255)
//  2. Masking: pixels whose H, S and V all fall inside the target's inclusive
//     bounds become foreground (255), everything else background (0)
//  3. Mask cleanup: morphological opening then closing with a 5x5 square
//     neighborhood, removing speckles first and then filling small holes
//  4. Contour extraction: outer boundaries of 8-connected foreground regions,
//     each reduced to its axis-aligned bounding rectangle
//  5. Validation: exclusion zones, width/height ratio and minimum area
//  6. Annotation: accepted boxes are drawn onto a copy of the frame
//
// # Coordinate System
//
// Boxes are image.Rectangle values in frame coordinates: Min is inclusive and
// Max exclusive, so a box at (x, y) with size w x h is
// image.Rect(x, y, x+w, y+h).
//
// # Purity
//
// Analyze never modifies the input frame and keeps no state between calls.
// The same frame and configuration always yield the same detections, which is
// also true when per-target work runs in parallel (WithParallel): results are
// merged in target order before anything is drawn.
//
// # Exclusion Zones
//
// Only the top-left corner of a box is tested against the zones. A box that
// starts outside a zone but extends into it is still accepted.
package vision
