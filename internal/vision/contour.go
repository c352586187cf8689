package vision

import (
	"image"
)

// Contour is the outer boundary of one connected foreground region.
type Contour struct {
	// Points are the region's outer boundary pixels: those with a 4-neighbor
	// outside the mask or in the background surrounding the region.
	Points []image.Point

	// Bounds is the smallest axis-aligned rectangle enclosing the region.
	// Max is exclusive, so Bounds.Dx() is the width in pixels.
	Bounds image.Rectangle

	// Pixels is the number of foreground pixels in the region.
	Pixels int
}

// BoundingRect returns the contour's bounding rectangle.
func (c Contour) BoundingRect() image.Rectangle {
	return c.Bounds
}

// FindContours returns the external contours of a binary mask.
//
// Foreground regions are grouped with 8-connectivity. Regions lying entirely
// inside a hole of another region are not reported, so each returned contour
// is an outermost boundary. Contours are ordered by the raster position
// (top to bottom, then left to right) of their first pixel.
//
// # Algorithm
//
//  1. Flood-fill the background from the mask border (4-connected) to mark
//     the outside of every shape
//  2. Flood-fill each unvisited foreground pixel (8-connected) to collect a region
//  3. Keep regions that touch that outside background or the mask edge; the
//     touching pixels form the contour
//
// Parameters:
//   - mask: Binary mask where foreground pixels are above half intensity.
//     Its bounds may have a non-zero origin.
//
// Returns:
//   - []Contour: External contours in mask coordinates. Nil for a mask with
//     no pixels.
func FindContours(mask *image.Gray) []Contour {
	bounds := mask.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	isFG := func(x, y int) bool {
		return mask.Pix[y*mask.Stride+x] >= Foreground/2+1
	}

	outside := markOutside(isFG, width, height)
	visited := make([]bool, width*height)
	contours := make([]Contour, 0)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if visited[y*width+x] || !isFG(x, y) {
				continue
			}
			region := floodFill(isFG, visited, x, y, width, height)

			contour, external := traceRegion(region, outside, width, height)
			if !external {
				continue
			}
			contour.Bounds = contour.Bounds.Add(bounds.Min)
			for i := range contour.Points {
				contour.Points[i] = contour.Points[i].Add(bounds.Min)
			}
			contours = append(contours, contour)
		}
	}

	return contours
}

// markOutside flags the background pixels reachable from the mask border
// through 4-connected background.
func markOutside(isFG func(x, y int) bool, width, height int) []bool {
	outside := make([]bool, width*height)
	stack := make([]image.Point, 0, 2*(width+height))

	push := func(x, y int) {
		if x < 0 || x >= width || y < 0 || y >= height {
			return
		}
		if outside[y*width+x] || isFG(x, y) {
			return
		}
		outside[y*width+x] = true
		stack = append(stack, image.Point{X: x, Y: y})
	}

	for x := 0; x < width; x++ {
		push(x, 0)
		push(x, height-1)
	}
	for y := 0; y < height; y++ {
		push(0, y)
		push(width-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		push(p.X+1, p.Y)
		push(p.X-1, p.Y)
		push(p.X, p.Y+1)
		push(p.X, p.Y-1)
	}

	return outside
}

// floodFill collects the 8-connected foreground region containing
// (startX, startY). Uses an explicit stack so large regions cannot overflow
// the goroutine stack.
func floodFill(isFG func(x, y int) bool, visited []bool, startX, startY, width, height int) []image.Point {
	region := make([]image.Point, 0, 64)
	stack := []image.Point{{X: startX, Y: startY}}
	visited[startY*width+startX] = true

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		region = append(region, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := p.X+dx, p.Y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				if visited[ny*width+nx] || !isFG(nx, ny) {
					continue
				}
				visited[ny*width+nx] = true
				stack = append(stack, image.Point{X: nx, Y: ny})
			}
		}
	}

	return region
}

// traceRegion computes the bounding box and outer boundary of a region. The
// region is external when that boundary is not empty.
func traceRegion(region []image.Point, outside []bool, width, height int) (Contour, bool) {
	minX, minY := width, height
	maxX, maxY := -1, -1
	boundary := make([]image.Point, 0, len(region)/2+4)

	neighbors := [4]image.Point{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}

	for _, p := range region {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}

		onBoundary := false
		for _, d := range neighbors {
			nx, ny := p.X+d.X, p.Y+d.Y
			if nx < 0 || nx >= width || ny < 0 || ny >= height || outside[ny*width+nx] {
				onBoundary = true
				break
			}
		}
		if onBoundary {
			boundary = append(boundary, p)
		}
	}

	return Contour{
		Points: boundary,
		Bounds: image.Rect(minX, minY, maxX+1, maxY+1),
		Pixels: len(region),
	}, len(boundary) > 0
}
