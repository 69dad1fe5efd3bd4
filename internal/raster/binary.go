package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// Background is the only grayscale sample value treated as background.
const Background uint8 = 255

// ErrNonRectangular indicates sample rows of differing lengths.
var ErrNonRectangular = errors.New("raster: all sample rows must have the same length")

// Point is a pixel coordinate together with the mask value observed when it
// was enqueued by a search.
type Point struct {
	X          int  `json:"x"` // Column
	Y          int  `json:"y"` // Row
	Foreground bool `json:"foreground"`
}

// BinaryImage is an immutable width × height foreground mask.
//
// Cells are stored row-major; cell (x, y) lives at index y*width + x.
type BinaryImage struct {
	width, height int
	cells         []bool
}

// FromGray thresholds a grayscale image into a BinaryImage.
//
// Every sample equal to 255 becomes background and every other value becomes
// foreground. The mask has exactly the dimensions of src and its origin is
// shifted to (0,0) regardless of src.Bounds().Min. src is not retained.
func FromGray(src *image.Gray) *BinaryImage {
	bounds := src.Bounds()
	b := newBinaryImage(bounds.Dx(), bounds.Dy())

	for y := 0; y < b.height; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+b.width]
		for x, v := range row {
			b.cells[y*b.width+x] = v != Background
		}
	}
	return b
}

// FromSamples builds a BinaryImage from rows of grayscale samples, where
// samples[y][x] is the value at column x of row y.
//
// An empty grid yields a 0×0 image. Rows of unequal length are rejected with
// ErrNonRectangular.
func FromSamples(samples [][]uint8) (*BinaryImage, error) {
	if len(samples) == 0 {
		return newBinaryImage(0, 0), nil
	}
	width := len(samples[0])
	for y, row := range samples {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d samples, want %d", ErrNonRectangular, y, len(row), width)
		}
	}

	b := newBinaryImage(width, len(samples))
	for y, row := range samples {
		for x, v := range row {
			b.cells[y*width+x] = v != Background
		}
	}
	return b, nil
}

// FromMask builds a BinaryImage from rows of foreground flags. It is mostly
// useful for constructing synthetic test patterns.
func FromMask(rows [][]bool) (*BinaryImage, error) {
	if len(rows) == 0 {
		return newBinaryImage(0, 0), nil
	}
	width := len(rows[0])
	b := newBinaryImage(width, len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrNonRectangular, y, len(row), width)
		}
		copy(b.cells[y*width:(y+1)*width], row)
	}
	return b, nil
}

func newBinaryImage(width, height int) *BinaryImage {
	return &BinaryImage{
		width:  width,
		height: height,
		cells:  make([]bool, width*height),
	}
}

// Width returns the number of columns.
func (b *BinaryImage) Width() int { return b.width }

// Height returns the number of rows.
func (b *BinaryImage) Height() int { return b.height }

// InBounds reports whether (x, y) addresses a cell of the image.
func (b *BinaryImage) InBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Foreground reports whether the cell at (x, y) is ink.
// It panics if (x, y) is outside the image.
func (b *BinaryImage) Foreground(x, y int) bool {
	if !b.InBounds(x, y) {
		panic(fmt.Sprintf("raster: coordinate (%d,%d) outside %dx%d image", x, y, b.width, b.height))
	}
	return b.cells[y*b.width+x]
}

// ForegroundCount returns the number of ink cells.
func (b *BinaryImage) ForegroundCount() int {
	n := 0
	for _, c := range b.cells {
		if c {
			n++
		}
	}
	return n
}

// ToGray renders the mask as a grayscale image: ink is black (0) and
// background is white (255).
func (b *BinaryImage) ToGray() *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, b.width, b.height))
	for i, c := range b.cells {
		if c {
			dst.Pix[i] = 0
		} else {
			dst.Pix[i] = Background
		}
	}
	return dst
}

// ColorModel, Bounds and At let a BinaryImage be used wherever an image.Image
// is expected (encoders, imaging helpers).
func (b *BinaryImage) ColorModel() color.Model { return color.GrayModel }

func (b *BinaryImage) Bounds() image.Rectangle { return image.Rect(0, 0, b.width, b.height) }

func (b *BinaryImage) At(x, y int) color.Color {
	if !b.InBounds(x, y) || !b.cells[y*b.width+x] {
		return color.Gray{Y: Background}
	}
	return color.Gray{Y: 0}
}
