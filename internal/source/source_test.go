package source

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// writeTestImage writes a solid color PNG into dir and returns its path.
func writeTestImage(t *testing.T, dir, name string, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func TestImageCache_Load(t *testing.T) {
	dir := t.TempDir()
	path := writeTestImage(t, dir, "a.png", 10, 8, color.RGBA{255, 0, 0, 255})
	cache := NewImageCache()

	img1, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img1.Bounds().Dx() != 10 || img1.Bounds().Dy() != 8 {
		t.Errorf("unexpected size %v", img1.Bounds())
	}

	// Second load comes from the cache even with the file gone.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	img2, err := cache.Load(path)
	if err != nil {
		t.Fatalf("cached Load: %v", err)
	}
	if img1 != img2 {
		t.Error("expected the cached image")
	}
	if cache.Len() != 1 {
		t.Errorf("expected 1 cached image, got %d", cache.Len())
	}
}

func TestImageCache_EvictAndClear(t *testing.T) {
	dir := t.TempDir()
	a := writeTestImage(t, dir, "a.png", 4, 4, color.White)
	b := writeTestImage(t, dir, "b.png", 4, 4, color.Black)
	cache := NewImageCache()

	for _, p := range []string{a, b} {
		if _, err := cache.Load(p); err != nil {
			t.Fatal(err)
		}
	}

	cache.Evict(a)
	if cache.Len() != 1 {
		t.Errorf("expected 1 after evict, got %d", cache.Len())
	}
	cache.Evict("not-cached.png")
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("expected empty cache, got %d", cache.Len())
	}
}

func TestImageCache_Errors(t *testing.T) {
	dir := t.TempDir()
	cache := NewImageCache()

	if _, err := cache.Load(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Load(bad); err == nil {
		t.Error("expected error for invalid image")
	}
}

func TestImageCache_Concurrent(t *testing.T) {
	dir := t.TempDir()
	path := writeTestImage(t, dir, "a.png", 16, 16, color.White)
	cache := NewImageCache()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				t.Errorf("Load: %v", err)
			}
		}()
	}
	wg.Wait()

	if cache.Len() != 1 {
		t.Errorf("expected 1 cached image, got %d", cache.Len())
	}
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	writeTestImage(t, dir, "b.png", 2, 2, color.White)
	writeTestImage(t, dir, "a.PNG", 2, 2, color.White)
	writeTestImage(t, dir, "c.jpg", 2, 2, color.White)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "d.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ListImages(dir)
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.PNG"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "c.jpg"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDirectory_Replay(t *testing.T) {
	dir := t.TempDir()
	writeTestImage(t, dir, "01.png", 8, 6, color.RGBA{255, 0, 0, 255})
	writeTestImage(t, dir, "02.png", 8, 6, color.RGBA{0, 0, 255, 255})

	src, err := NewDirectory(dir)
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}
	defer src.Close()

	ctx := context.Background()
	wantFirst := []color.RGBA{{255, 0, 0, 255}, {0, 0, 255, 255}}
	for i, want := range wantFirst {
		img, err := src.Next(ctx)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		r, g, b, a := img.At(0, 0).RGBA()
		got := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
		if got != want {
			t.Errorf("frame %d: got %v, want %v", i, got, want)
		}
	}

	if _, err := src.Next(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestDirectory_Loop(t *testing.T) {
	dir := t.TempDir()
	writeTestImage(t, dir, "only.png", 4, 4, color.White)

	src, err := NewDirectory(dir, WithLoop(true))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if _, err := src.Next(context.Background()); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
}

func TestDirectory_Resize(t *testing.T) {
	dir := t.TempDir()
	writeTestImage(t, dir, "big.png", 1280, 960, color.White)

	src, err := NewDirectory(dir, WithSize(640, 480))
	if err != nil {
		t.Fatal(err)
	}
	img, err := src.Next(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 640, 480) {
		t.Errorf("unexpected bounds %v", img.Bounds())
	}
}

func TestDirectory_FramesAreCopies(t *testing.T) {
	dir := t.TempDir()
	writeTestImage(t, dir, "a.png", 4, 4, color.White)

	src, err := NewDirectory(dir, WithLoop(true))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	first, _ := src.Next(ctx)
	first.(*image.NRGBA).Set(0, 0, color.Black)

	second, _ := src.Next(ctx)
	if r, _, _, _ := second.At(0, 0).RGBA(); r != 0xffff {
		t.Error("drawing on one frame leaked into the next")
	}
}

func TestDirectory_Errors(t *testing.T) {
	if _, err := NewDirectory(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}

	if _, err := NewDirectory(t.TempDir()); !errors.Is(err, ErrNoFrame) {
		t.Errorf("expected ErrNoFrame for empty directory, got %v", err)
	}

	dir := t.TempDir()
	writeTestImage(t, dir, "a.png", 4, 4, color.White)
	src, err := NewDirectory(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDirectory_SinglePassReleasesFrames(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 20; i++ {
		writeTestImage(t, dir, fmt.Sprintf("%03d.png", i), 64, 48, color.White)
	}
	cache := NewImageCache()

	src, err := NewDirectory(dir, WithCache(cache))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	frames := 0
	for {
		_, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("frame %d: %v", frames, err)
		}
		frames++
		if cache.Len() != 0 {
			t.Fatalf("frame %d still cached after replay", frames)
		}
	}
	if frames != 20 {
		t.Errorf("expected 20 frames, got %d", frames)
	}
}

func TestDirectory_LoopKeepsFramesCached(t *testing.T) {
	dir := t.TempDir()
	writeTestImage(t, dir, "a.png", 4, 4, color.White)
	writeTestImage(t, dir, "b.png", 4, 4, color.Black)
	cache := NewImageCache()

	src, err := NewDirectory(dir, WithLoop(true), WithCache(cache))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		if _, err := src.Next(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if cache.Len() != 2 {
		t.Errorf("expected both images cached while looping, got %d", cache.Len())
	}

	if err := src.Close(); err != nil {
		t.Fatal(err)
	}
	if cache.Len() != 0 {
		t.Errorf("Close should release the cache, got %d", cache.Len())
	}
}

func TestDirectory_Paths(t *testing.T) {
	dir := t.TempDir()
	writeTestImage(t, dir, "2.png", 4, 4, color.White)
	writeTestImage(t, dir, "1.png", 4, 4, color.White)

	src, err := NewDirectory(dir)
	if err != nil {
		t.Fatal(err)
	}
	paths := src.Paths()
	want := []string{filepath.Join(dir, "1.png"), filepath.Join(dir, "2.png")}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	// The returned slice is a copy.
	paths[0] = "changed"
	if src.Paths()[0] != want[0] {
		t.Error("Paths exposed internal state")
	}
}
