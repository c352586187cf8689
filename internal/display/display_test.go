package display

import (
	"image"
	"testing"
)

func TestIsQuitKey(t *testing.T) {
	tests := []struct {
		key  int
		want bool
	}{
		{'q', true},
		{'Q', true},
		{27, true},
		{-1, false},
		{'a', false},
		{' ', false},
		// Some backends report modifier bits above the low byte.
		{0x100000 | 'q', true},
	}

	for _, tt := range tests {
		if got := IsQuitKey(tt.key); got != tt.want {
			t.Errorf("IsQuitKey(%d) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestHeadless(t *testing.T) {
	var h Headless
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))

	for i := 0; i < 3; i++ {
		quit, err := h.Show(img)
		if err != nil || quit {
			t.Fatalf("Show = %v, %v", quit, err)
		}
	}
	if h.Shown() != 3 {
		t.Errorf("expected 3 frames, got %d", h.Shown())
	}
	if h.Last() != img {
		t.Error("expected last frame to be kept")
	}
	if err := h.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
