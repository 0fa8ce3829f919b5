// Package texture decodes sprite sheet images. PNG and BMP go through the
// image package decoders; TGA has its own reader.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/png" // PNG decoder registration
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp" // BMP decoder registration
)

// Decoding errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported texture format")
	ErrTruncated         = errors.New("texture data truncated")
)

// Decode decodes data using the file extension ext (".png", ".bmp",
// ".tga") to pick the decoder.
func Decode(data []byte, ext string) (image.Image, error) {
	switch strings.ToLower(ext) {
	case ".tga":
		return DecodeTGA(data)
	case ".png", ".bmp":
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", ext, err)
		}
		return img, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Load reads and decodes the image at path.
func Load(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// IsColorKey reports whether an RGB color matches the magenta
// transparency key used by old sprite sheets. The tolerance absorbs BMP
// rounding.
func IsColorKey(r, g, b uint8) bool {
	return r >= 250 && g <= 10 && b >= 250
}

// ToRGBA converts img to *image.RGBA. With colorKey set, magenta pixels
// become transparent black.
func ToRGBA(img image.Image, colorKey bool) *image.RGBA {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || colorKey {
		rgba = image.NewRGBA(bounds)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				rgba.Set(x, y, img.At(x, y))
			}
		}
	}
	if colorKey {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				i := rgba.PixOffset(x, y)
				if IsColorKey(rgba.Pix[i], rgba.Pix[i+1], rgba.Pix[i+2]) {
					rgba.SetRGBA(x, y, color.RGBA{})
				}
			}
		}
	}
	return rgba
}
