package display

import (
	"image"
	"sync"
)

// Sink receives the annotated frames.
type Sink interface {
	// Show displays img and reports whether the user asked to quit.
	Show(img image.Image) (quit bool, err error)

	Close() error
}

// Key codes that stop the loop.
const (
	KeyEscape = 27
)

// IsQuitKey reports whether a key code returned by the window means quit:
// q, Q or Escape.
func IsQuitKey(key int) bool {
	if key < 0 {
		return false
	}
	switch key & 0xFF {
	case 'q', 'Q', KeyEscape:
		return true
	}
	return false
}

// Headless is a Sink that never displays anything and never quits.
type Headless struct {
	mu    sync.Mutex
	shown int
	last  image.Image
}

// Show implements Sink.
func (h *Headless) Show(img image.Image) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shown++
	h.last = img
	return false, nil
}

// Shown returns how many frames were received.
func (h *Headless) Shown() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.shown
}

// Last returns the most recent frame, or nil.
func (h *Headless) Last() image.Image {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

// Close implements Sink.
func (h *Headless) Close() error { return nil }
