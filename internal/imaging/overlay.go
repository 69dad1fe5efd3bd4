package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// DefaultMarkerColor is used when no marker colour is configured.
const DefaultMarkerColor = "#FF0000"

// EncodedImage is an image encoded as base64 PNG, the shape every image
// returning MCP tool uses.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG encodes img as a base64 PNG.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// ParseMarkerColor parses a "#RRGGBB" (or "#RGB") colour string. An empty
// string selects DefaultMarkerColor.
func ParseMarkerColor(hex string) (color.NRGBA, error) {
	if hex == "" {
		hex = DefaultMarkerColor
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid marker color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// Annotate draws a square marker of the given radius around every point on
// a copy of img. Markers are clipped to the image; the source is not
// modified.
//
// Parameters:
//   - img: Source image (any colour model).
//   - points: Marker centres in img's coordinate space relative to its
//     top-left corner.
//   - markerHex: Marker colour, see ParseMarkerColor.
//   - radius: Half-width of each marker in pixels; 0 paints single pixels.
func Annotate(img image.Image, points []image.Point, markerHex string, radius int) (*image.NRGBA, error) {
	marker, err := ParseMarkerColor(markerHex)
	if err != nil {
		return nil, err
	}
	if radius < 0 {
		return nil, fmt.Errorf("marker radius cannot be negative (%d)", radius)
	}

	dst := imaging.Clone(img)
	bounds := dst.Bounds()

	for _, p := range points {
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				// Outline only, so the stroke under the marker stays visible.
				if radius > 0 && dx != -radius && dx != radius && dy != -radius && dy != radius {
					continue
				}
				px, py := p.X+dx, p.Y+dy
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					dst.SetNRGBA(px, py, marker)
				}
			}
		}
	}
	return dst, nil
}

// SaveAnnotated writes an annotated copy of img to path. The output format
// is chosen from the file extension.
func SaveAnnotated(path string, img image.Image, points []image.Point, markerHex string, radius int) error {
	annotated, err := Annotate(img, points, markerHex, radius)
	if err != nil {
		return err
	}
	if err := imaging.Save(annotated, path); err != nil {
		return fmt.Errorf("failed to save annotated image: %w", err)
	}
	return nil
}
