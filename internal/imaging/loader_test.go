package imaging

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// createInMemoryImage creates a solid colour RGBA image.
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createStrokeImage creates a white image with a black horizontal stroke on
// row strokeY.
func createStrokeImage(width, height, strokeY int) *image.RGBA {
	img := createInMemoryImage(width, height, color.White)
	for x := 0; x < width; x++ {
		img.Set(x, strokeY, color.Black)
	}
	return img
}

// writePNG encodes img into a temp file and returns its path. The file is
// removed when the test ends.
func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test-image.png")
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

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache()
	if cache == nil {
		t.Fatal("NewImageCache returned nil")
	}
	if cache.images == nil {
		t.Fatal("NewImageCache did not initialize images map")
	}
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	imgPath := writePNG(t, createStrokeImage(100, 60, 30))

	img1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	bounds := img1.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 60 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x60", bounds.Dx(), bounds.Dy())
	}

	// Second load should return cached image
	img2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
}

func TestImageCache_Load_NonExistent(t *testing.T) {
	cache := NewImageCache()
	_, err := cache.Load("/nonexistent/path/to/image.png")
	if err == nil {
		t.Fatal("Load should fail for non-existent file")
	}
	if !errors.Is(err, ErrImageLoad) {
		t.Errorf("error should wrap ErrImageLoad, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should keep the os cause, got %v", err)
	}
}

func TestImageCache_Load_InvalidImage(t *testing.T) {
	cache := NewImageCache()
	path := filepath.Join(t.TempDir(), "invalid.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	_, err := cache.Load(path)
	if !errors.Is(err, ErrImageLoad) {
		t.Errorf("Load should fail with ErrImageLoad for invalid data, got %v", err)
	}
}

func TestImageCache_ClearAndEvict(t *testing.T) {
	cache := NewImageCache()
	imgPath := writePNG(t, createStrokeImage(20, 20, 5))

	if _, err := cache.Load(imgPath); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cache.Evict(imgPath)

	cache.mu.RLock()
	_, exists := cache.images[imgPath]
	cache.mu.RUnlock()
	if exists {
		t.Error("Evict did not remove image from cache")
	}

	if _, err := cache.Load(imgPath); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cache.Clear()

	cache.mu.RLock()
	count := len(cache.images)
	cache.mu.RUnlock()
	if count != 0 {
		t.Errorf("Clear did not empty cache: %d images remain", count)
	}

	// Should not panic
	cache.Evict("/nonexistent/path")
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache()
	imgPath := writePNG(t, createStrokeImage(50, 50, 10))

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(imgPath); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load error: %v", err)
	}
}

func TestToGray_Luminance(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 1))
	img.Set(0, 0, color.White)
	img.Set(1, 0, color.Black)
	img.Set(2, 0, color.RGBA{255, 0, 0, 255})
	img.Set(3, 0, color.RGBA{250, 250, 250, 255})

	gray := ToGray(img, WhiteLevel)

	if got := gray.GrayAt(0, 0).Y; got != 255 {
		t.Errorf("white: got %d, want 255", got)
	}
	if got := gray.GrayAt(1, 0).Y; got != 0 {
		t.Errorf("black: got %d, want 0", got)
	}
	// 0.299 * 255 = 76.2
	if got := gray.GrayAt(2, 0).Y; got != 76 {
		t.Errorf("red: got %d, want 76", got)
	}
	// Off-white paper stays below 255, so it remains ink under the exact rule.
	if got := gray.GrayAt(3, 0).Y; got != 250 {
		t.Errorf("off-white: got %d, want 250", got)
	}
}

func TestToGray_NonZeroOrigin(t *testing.T) {
	src := createStrokeImage(20, 20, 12)
	sub := src.SubImage(image.Rect(5, 10, 15, 15))

	gray := ToGray(sub, WhiteLevel)
	if gray.Bounds() != image.Rect(0, 0, 10, 5) {
		t.Fatalf("bounds: got %v, want (0,0)-(10,5)", gray.Bounds())
	}
	if got := gray.GrayAt(0, 2).Y; got != 0 {
		t.Errorf("stroke row: got %d, want 0", got)
	}
	if got := gray.GrayAt(0, 0).Y; got != 255 {
		t.Errorf("paper row: got %d, want 255", got)
	}
}

func TestToGray_WhiteLevel(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 1))
	img.Pix = []uint8{250, 100, 255}

	exact := ToGray(img, WhiteLevel)
	if exact.Pix[0] != 250 {
		t.Errorf("exact rule altered a sample: got %d, want 250", exact.Pix[0])
	}

	leveled := ToGray(img, 200)
	want := []uint8{255, 0, 255}
	for i, w := range want {
		if leveled.Pix[i] != w {
			t.Errorf("sample %d: got %d, want %d", i, leveled.Pix[i], w)
		}
	}
}

func TestLoadMask(t *testing.T) {
	imgPath := writePNG(t, createStrokeImage(30, 10, 4))

	mask, err := LoadMask(imgPath, WhiteLevel)
	if err != nil {
		t.Fatalf("LoadMask failed: %v", err)
	}
	if mask.Width() != 30 || mask.Height() != 10 {
		t.Errorf("dimensions: got %dx%d, want 30x10", mask.Width(), mask.Height())
	}
	if got := mask.ForegroundCount(); got != 30 {
		t.Errorf("ForegroundCount: got %d, want 30", got)
	}
	if !mask.Foreground(7, 4) || mask.Foreground(7, 5) {
		t.Error("stroke not where it was drawn")
	}
}

func TestLoadGray_NonExistent(t *testing.T) {
	_, err := LoadGray("/nonexistent/image.png", WhiteLevel)
	if !errors.Is(err, ErrImageLoad) {
		t.Errorf("expected ErrImageLoad, got %v", err)
	}
}

func TestLoadImageInfo(t *testing.T) {
	cache := NewImageCache()
	imgPath := writePNG(t, createStrokeImage(200, 150, 75))

	info, err := LoadImageInfo(cache, imgPath)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}

	if info.Width != 200 {
		t.Errorf("Width: got %d, want 200", info.Width)
	}
	if info.Height != 150 {
		t.Errorf("Height: got %d, want 150", info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	if info.ForegroundPixels != 200 {
		t.Errorf("ForegroundPixels: got %d, want 200", info.ForegroundPixels)
	}
	if info.FileSizeBytes <= 0 {
		t.Error("FileSizeBytes should be positive")
	}
}

func TestLoadImageInfo_NonExistent(t *testing.T) {
	cache := NewImageCache()
	_, err := LoadImageInfo(cache, "/nonexistent/image.png")
	if err == nil {
		t.Error("LoadImageInfo should fail for non-existent file")
	}
}

func TestFormatFromExt(t *testing.T) {
	tests := []struct {
		path   string
		format string
	}{
		{"a.png", "png"},
		{"a.JPG", "jpeg"},
		{"a.jpeg", "jpeg"},
		{"a.gif", "gif"},
		{"a.bmp", "bmp"},
		{"a.tif", "tiff"},
		{"a.tiff", "tiff"},
		{"a.webp", "webp"},
		{"a.xyz", "unknown"},
		{"noext", "unknown"},
	}

	for _, tt := range tests {
		if got := formatFromExt(tt.path); got != tt.format {
			t.Errorf("formatFromExt(%q): got %s, want %s", tt.path, got, tt.format)
		}
	}
}
