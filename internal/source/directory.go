package source

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// supportedExt lists the file extensions Directory replays.
var supportedExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// Directory replays the images of a folder as frames.
type Directory struct {
	mu     sync.Mutex
	paths  []string
	next   int
	loop   bool
	width  int
	height int
	cache  *ImageCache
}

// DirectoryOption configures a Directory.
type DirectoryOption func(*Directory)

// WithLoop restarts from the first image instead of returning io.EOF.
func WithLoop(loop bool) DirectoryOption {
	return func(d *Directory) { d.loop = loop }
}

// WithSize resizes every frame to width x height, as a camera configured for
// that resolution would deliver. Zero in either dimension disables resizing.
func WithSize(width, height int) DirectoryOption {
	return func(d *Directory) {
		d.width = width
		d.height = height
	}
}

// WithCache shares an existing cache. Without looping, each image is
// evicted from it once replayed.
func WithCache(cache *ImageCache) DirectoryOption {
	return func(d *Directory) { d.cache = cache }
}

// NewDirectory lists the images in dir. Subdirectories are not searched.
// A directory without images yields ErrNoFrame.
func NewDirectory(dir string, opts ...DirectoryOption) (*Directory, error) {
	paths, err := ListImages(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no images in %s", ErrNoFrame, dir)
	}

	d := &Directory{paths: paths}
	for _, opt := range opts {
		opt(d)
	}
	if d.cache == nil {
		d.cache = NewImageCache()
	}
	return d, nil
}

// ListImages returns the supported image files in dir sorted by name.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if supportedExt[strings.ToLower(filepath.Ext(e.Name()))] {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Paths returns the files in replay order.
func (d *Directory) Paths() []string {
	return append([]string(nil), d.paths...)
}

// Next implements Source.
func (d *Directory) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	if d.next >= len(d.paths) {
		if !d.loop {
			d.mu.Unlock()
			return nil, io.EOF
		}
		d.next = 0
	}
	path := d.paths[d.next]
	d.next++
	d.mu.Unlock()

	img, err := d.cache.Load(path)
	if err != nil {
		return nil, err
	}
	// A single pass never comes back to this file.
	if !d.loop {
		d.cache.Evict(path)
	}

	if d.width > 0 && d.height > 0 {
		b := img.Bounds()
		if b.Dx() != d.width || b.Dy() != d.height {
			return imaging.Resize(img, d.width, d.height, imaging.Linear), nil
		}
	}
	// Hand out a private copy so callers may draw on it.
	return imaging.Clone(img), nil
}

// Close releases the cached images.
func (d *Directory) Close() error {
	d.cache.Clear()
	return nil
}
