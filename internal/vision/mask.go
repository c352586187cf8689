package vision

import (
	"image"

	"github.com/ironsheep/cartwatch/internal/config"
)

// Mask values.
const (
	Background uint8 = 0
	Foreground uint8 = 255
)

// kernelRadius gives the 5x5 structuring neighborhood used for cleanup.
const kernelRadius = 2

// InRange builds a binary mask of the pixels whose H, S and V values all lie
// within [lower, upper], inclusive.
func InRange(hsv *HSVImage, lower, upper config.HSV) *image.Gray {
	width := hsv.Rect.Dx()
	height := hsv.Rect.Dy()
	mask := image.NewGray(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*hsv.Stride + x*3
			h, s, v := int(hsv.Pix[i]), int(hsv.Pix[i+1]), int(hsv.Pix[i+2])
			if h >= lower.H && h <= upper.H &&
				s >= lower.S && s <= upper.S &&
				v >= lower.V && v <= upper.V {
				mask.Pix[y*mask.Stride+x] = Foreground
			}
		}
	}

	return mask
}

// Clean removes isolated noise from a mask and then fills small gaps inside
// the remaining blobs: an opening followed by a closing.
func Clean(mask *image.Gray) *image.Gray {
	return Close(Open(mask))
}

// Open is an erosion followed by a dilation. Foreground specks smaller than
// the 5x5 neighborhood disappear; larger regions keep their shape.
func Open(mask *image.Gray) *image.Gray {
	return Dilate(Erode(mask))
}

// Close is a dilation followed by an erosion. Background holes smaller than
// the 5x5 neighborhood are filled.
func Close(mask *image.Gray) *image.Gray {
	return Erode(Dilate(mask))
}

// Erode keeps a pixel only when its whole 5x5 neighborhood is foreground.
// The neighborhood is clipped at the mask border, which matches repeating
// the nearest edge value.
func Erode(mask *image.Gray) *image.Gray {
	return morph(mask, true)
}

// Dilate sets a pixel when any pixel of its 5x5 neighborhood is foreground.
func Dilate(mask *image.Gray) *image.Gray {
	return morph(mask, false)
}

// morph applies a square min (erode) or max (dilate) filter as a horizontal
// pass followed by a vertical pass. Each pass counts foreground pixels in a
// sliding window, so the cost does not depend on the kernel size.
func morph(mask *image.Gray, erode bool) *image.Gray {
	b := mask.Bounds()
	width, height := b.Dx(), b.Dy()
	out := image.NewGray(b)
	if width == 0 || height == 0 {
		return out
	}

	tmp := make([]uint8, width*height)
	counts := make([]int, max(width, height)+1)

	for y := 0; y < height; y++ {
		src := mask.Pix[y*mask.Stride:]
		slide(counts, width, erode,
			func(i int) bool { return src[i] >= Foreground/2+1 },
			func(i int, v uint8) { tmp[y*width+i] = v })
	}
	for x := 0; x < width; x++ {
		slide(counts, height, erode,
			func(i int) bool { return tmp[i*width+x] == Foreground },
			func(i int, v uint8) { out.Pix[i*out.Stride+x] = v })
	}

	return out
}

// slide runs the 1-D window over n samples. counts is scratch space of at
// least n+1 entries holding prefix sums of foreground samples.
func slide(counts []int, n int, erode bool, isFG func(int) bool, set func(int, uint8)) {
	counts[0] = 0
	for i := 0; i < n; i++ {
		counts[i+1] = counts[i]
		if isFG(i) {
			counts[i+1]++
		}
	}

	for i := 0; i < n; i++ {
		lo := max(i-kernelRadius, 0)
		hi := min(i+kernelRadius, n-1)
		fg := counts[hi+1] - counts[lo]

		on := fg > 0
		if erode {
			on = fg == hi-lo+1
		}
		if on {
			set(i, Foreground)
		} else {
			set(i, Background)
		}
	}
}
