package sprite

import (
	"image"
	"math"
)

// AlphaBitmap is the thresholded alpha channel of an image. Pixels whose
// alpha is at or below the threshold read as 0; the rest keep their alpha.
// Coordinates are relative to the image bounds origin. Reads outside the
// bitmap return 0.
type AlphaBitmap struct {
	Width  int
	Height int
	Pix    []uint8
}

// ThresholdFromFraction converts a [0, 1] alpha threshold into 0..255.
func ThresholdFromFraction(f float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Floor(f*255))))
}

// NewAlphaBitmap extracts the alpha channel of img. A nil image gives an
// invalid, empty bitmap.
func NewAlphaBitmap(img image.Image, threshold uint8) *AlphaBitmap {
	if img == nil {
		return &AlphaBitmap{}
	}
	b := img.Bounds()
	bm := &AlphaBitmap{Width: b.Dx(), Height: b.Dy(), Pix: make([]uint8, b.Dx()*b.Dy())}
	for y := 0; y < bm.Height; y++ {
		for x := 0; x < bm.Width; x++ {
			_, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			alpha := uint8(a >> 8)
			if alpha > threshold {
				bm.Pix[y*bm.Width+x] = alpha
			}
		}
	}
	return bm
}

// IsValid reports whether the bitmap has any pixels.
func (bm *AlphaBitmap) IsValid() bool {
	return bm != nil && bm.Width > 0 && bm.Height > 0
}

// At returns the thresholded alpha at (x, y).
func (bm *AlphaBitmap) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= bm.Width || y >= bm.Height {
		return 0
	}
	return bm.Pix[y*bm.Width+x]
}

// IsRowEmpty reports whether row y is empty between x0 and x1 inclusive.
func (bm *AlphaBitmap) IsRowEmpty(x0, x1, y int) bool {
	for x := x0; x <= x1; x++ {
		if bm.At(x, y) != 0 {
			return false
		}
	}
	return true
}

// IsColumnEmpty reports whether column x is empty between y0 and y1
// inclusive.
func (bm *AlphaBitmap) IsColumnEmpty(x, y0, y1 int) bool {
	for y := y0; y <= y1; y++ {
		if bm.At(x, y) != 0 {
			return false
		}
	}
	return true
}

// IsRegionEmpty reports whether the inclusive region is empty.
func (bm *AlphaBitmap) IsRegionEmpty(x0, y0, x1, y1 int) bool {
	for y := y0; y <= y1; y++ {
		if !bm.IsRowEmpty(x0, x1, y) {
			return false
		}
	}
	return true
}

// IsRegionEqual reports whether every pixel of the inclusive region has
// value v.
func (bm *AlphaBitmap) IsRegionEqual(x0, y0, x1, y1 int, v uint8) bool {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if bm.At(x, y) != v {
				return false
			}
		}
	}
	return true
}

// TightenBounds shrinks the region at origin with size so no border row or
// column is empty. A fully empty region collapses to a single row and
// column.
func (bm *AlphaBitmap) TightenBounds(origin, size image.Point) (image.Point, image.Point) {
	left, top := origin.X, origin.Y
	right, bottom := origin.X+size.X-1, origin.Y+size.Y-1

	for top < bottom && bm.IsRowEmpty(left, right, top) {
		top++
	}
	for bottom > top && bm.IsRowEmpty(left, right, bottom) {
		bottom--
	}
	for left < right && bm.IsColumnEmpty(left, top, bottom) {
		left++
	}
	for right > left && bm.IsColumnEmpty(right, top, bottom) {
		right--
	}
	return image.Point{X: left, Y: top}, image.Point{X: right - left + 1, Y: bottom - top + 1}
}

// TightBounds returns the smallest rectangle holding every non-empty pixel
// of the whole bitmap, or an empty rectangle.
func (bm *AlphaBitmap) TightBounds() image.Rectangle {
	if !bm.IsValid() || bm.IsRegionEmpty(0, 0, bm.Width-1, bm.Height-1) {
		return image.Rectangle{}
	}
	pos, size := bm.TightenBounds(image.Point{}, image.Point{X: bm.Width, Y: bm.Height})
	return image.Rectangle{Min: pos, Max: pos.Add(size)}
}
