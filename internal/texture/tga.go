package texture

import (
	"fmt"
	"image"
	"image/color"
)

// TGA image types.
const (
	TGATypeUncompressed = 2
	TGATypeRLE          = 10
)

const tgaHeaderSize = 18

// tgaReader walks TGA pixel data in file order and stores each pixel at
// its image position.
type tgaReader struct {
	img         *image.RGBA
	data        []byte
	pos         int
	bpp         int
	topToBottom bool
	next        int
}

func (r *tgaReader) done() bool {
	w, h := r.img.Rect.Dx(), r.img.Rect.Dy()
	return r.next >= w*h
}

// pixel reads one BGR(A) pixel.
func (r *tgaReader) pixel() (color.RGBA, error) {
	if r.pos+r.bpp > len(r.data) {
		return color.RGBA{}, ErrTruncated
	}
	p := r.data[r.pos : r.pos+r.bpp]
	r.pos += r.bpp
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if r.bpp == 4 {
		c.A = p[3]
	}
	return c, nil
}

func (r *tgaReader) put(c color.RGBA) {
	w, h := r.img.Rect.Dx(), r.img.Rect.Dy()
	x, y := r.next%w, r.next/w
	if !r.topToBottom {
		y = h - 1 - y
	}
	r.img.SetRGBA(x, y, c)
	r.next++
}

// DecodeTGA decodes an uncompressed (type 2) or RLE (type 10) true-color
// TGA with 24 or 32 bits per pixel.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < tgaHeaderSize {
		return nil, fmt.Errorf("tga header: %w", ErrTruncated)
	}
	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bits := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("%w: color-mapped tga", ErrUnsupportedFormat)
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("%w: tga type %d", ErrUnsupportedFormat, imageType)
	}
	if bits != 24 && bits != 32 {
		return nil, fmt.Errorf("%w: tga depth %d", ErrUnsupportedFormat, bits)
	}
	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("tga id field: %w", ErrTruncated)
	}

	r := &tgaReader{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		data:        data[offset:],
		bpp:         bits / 8,
		topToBottom: descriptor&0x20 != 0,
	}

	if imageType == TGATypeUncompressed {
		if len(r.data) < width*height*r.bpp {
			return nil, fmt.Errorf("tga pixels: %w", ErrTruncated)
		}
		for !r.done() {
			c, _ := r.pixel()
			r.put(c)
		}
		return r.img, nil
	}

	// A short RLE stream leaves the remaining pixels transparent.
	for !r.done() && r.pos < len(r.data) {
		packet := r.data[r.pos]
		r.pos++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			c, err := r.pixel()
			if err != nil {
				break
			}
			for i := 0; i < count && !r.done(); i++ {
				r.put(c)
			}
			continue
		}
		for i := 0; i < count && !r.done(); i++ {
			c, err := r.pixel()
			if err != nil {
				return r.img, nil
			}
			r.put(c)
		}
	}
	return r.img, nil
}
