package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/ironsheep/stroke-crossings/internal/raster"
)

// ErrImageLoad is the single load failure kind: the file is missing,
// unreadable, or not in a supported format. Callers test for it with
// errors.Is; the wrapped error carries the underlying cause.
var ErrImageLoad = errors.New("imaging: could not open or decode image")

// WhiteLevel is the default paper threshold: only pure white (255) is
// background.
const WhiteLevel uint8 = raster.Background

// ImageCache provides thread-safe caching of decoded images to avoid redundant
// disk reads.
//
// The cache stores decoded image.Image objects keyed by their file path. Once
// an image is loaded, subsequent Load() calls for the same path return the
// cached copy without disk I/O.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	img, err := cache.Load("/path/to/strokes.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	mask := raster.FromGray(imaging.ToGray(img, imaging.WhiteLevel))
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or decodes it from disk if not
// cached.
//
// Supported formats are PNG, JPEG, GIF, BMP, TIFF and WebP. EXIF orientation
// of JPEG files is applied so the pixel grid matches what a viewer shows.
//
// # Errors
//
// Every failure wraps ErrImageLoad together with the underlying os or
// decoder error.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := decode(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

func decode(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImageLoad, path, err)
	}
	return img, nil
}

// LoadGray decodes the image at path into an 8-bit grayscale grid.
//
// Parameters:
//   - path: Image file to decode.
//   - whiteLevel: Samples at or above this level are forced to pure white
//     before the result is returned. WhiteLevel (255) leaves every sample
//     untouched; lower values help with scans whose paper is not pure white.
//
// Returns:
//   - *image.Gray: The grayscale grid with origin (0,0).
//   - error: Wraps ErrImageLoad on any open or decode failure.
func LoadGray(path string, whiteLevel uint8) (*image.Gray, error) {
	img, err := decode(path)
	if err != nil {
		return nil, err
	}
	return ToGray(img, whiteLevel), nil
}

// ToGray converts any image to an 8-bit grayscale grid.
//
// # Conversion
//
// Luminance uses the ITU-R BT.601 weights (0.299*R + 0.587*G + 0.114*B),
// rounded to the nearest integer, via imaging.Grayscale. Colours are
// unpremultiplied first and alpha is then dropped.
//
// # White Level
//
// When whiteLevel is below 255 the grid is passed through bild's
// segment.Threshold, which maps samples >= whiteLevel to 255 and everything
// else to 0. The output is then strictly two-valued.
func ToGray(img image.Image, whiteLevel uint8) *image.Gray {
	nrgba := imaging.Grayscale(img)
	bounds := nrgba.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := 0; y < bounds.Dy(); y++ {
		src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+bounds.Dx()*4]
		dst := gray.Pix[y*gray.Stride : y*gray.Stride+bounds.Dx()]
		for x := range dst {
			dst[x] = src[x*4]
		}
	}

	if whiteLevel < WhiteLevel {
		return segment.Threshold(gray, whiteLevel)
	}
	return gray
}

// LoadMask decodes path and thresholds it into a BinaryImage in one step.
func LoadMask(path string, whiteLevel uint8) (*raster.BinaryImage, error) {
	gray, err := LoadGray(path, whiteLevel)
	if err != nil {
		return nil, err
	}
	return raster.FromGray(gray), nil
}

// ImageInfo contains metadata about a loaded stroke image.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the detected image format: "png", "jpeg", "gif", "bmp",
	// "tiff", "webp", or "unknown". Detection is based on file extension.
	Format string `json:"format"`

	// ForegroundPixels is the number of ink pixels after thresholding at
	// WhiteLevel.
	ForegroundPixels int `json:"foreground_pixels"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through cache and returns its metadata.
//
// Parameters:
//   - cache: The image cache to use for loading. Must not be nil.
//   - path: Path to the image file.
//
// Returns:
//   - *ImageInfo: Dimensions, format, ink pixel count and file size.
//   - error: Non-nil if the image cannot be loaded or the file cannot be stat'd.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	bounds := img.Bounds()
	mask := raster.FromGray(ToGray(img, WhiteLevel))

	return &ImageInfo{
		Width:            bounds.Dx(),
		Height:           bounds.Dy(),
		Format:           formatFromExt(path),
		ForegroundPixels: mask.ForegroundCount(),
		FileSizeBytes:    stat.Size(),
	}, nil
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	case ".webp":
		return "webp"
	default:
		return "unknown"
	}
}
