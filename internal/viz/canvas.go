package viz

import (
	"errors"
	"image"
	"strings"
)

// Ramp orders glyphs from emptiest to densest.
const Ramp = " .'`^\",:;Il!i><~+_-?][}{1)(|\\/tfjrxnuvczXYUJCLQ0OZmwqpdbkhao*#MW&8%B@$"

// DitherMatrix holds the 2x2 ordered dither weights, indexed [row%2][col%2].
var DitherMatrix = [2][2]int{
	{1, 3},
	{4, 2},
}

var (
	ErrInvalidSize = errors.New("viz: target size must be at least 1x1")
	ErrEmptyImage  = errors.New("viz: image has no pixels")
)

var glyphs = []rune(Ramp)

// Off and On are the only two glyphs the renderer emits.
var (
	Off = glyphs[0]
	On  = glyphs[len(glyphs)-1]
)

// Threshold returns the luminance a pixel must exceed at (row, col) to be
// drawn with the dense glyph.
func Threshold(row, col int) float64 {
	return float64(DitherMatrix[row%2][col%2]) / 5.0 * 255.0
}

// Scale is the uniform source-pixels-per-cell factor. Taking the larger of
// the two axis ratios keeps the aspect ratio and never samples past the image.
func Scale(width, height, cols, rows int) float64 {
	sx := float64(width) / float64(cols)
	sy := float64(height) / float64(rows)
	if sx > sy {
		return sx
	}
	return sy
}

// Sample maps cell (col, row) to its nearest source pixel, clamped to the
// image bounds.
func Sample(bounds image.Rectangle, scale float64, col, row int) image.Point {
	x := int(float64(col) * scale)
	y := int(float64(row) * scale)
	if x > bounds.Dx()-1 {
		x = bounds.Dx() - 1
	}
	if y > bounds.Dy()-1 {
		y = bounds.Dy() - 1
	}
	return image.Point{X: bounds.Min.X + x, Y: bounds.Min.Y + y}
}

// Render converts a grayscale image into cols x rows glyphs, one line per
// row, each line terminated by '\n'.
func Render(img *image.Gray, cols, rows int) (string, error) {
	if cols < 1 || rows < 1 {
		return "", ErrInvalidSize
	}
	if img == nil || img.Bounds().Dx() < 1 || img.Bounds().Dy() < 1 {
		return "", ErrEmptyImage
	}

	bounds := img.Bounds()
	scale := Scale(bounds.Dx(), bounds.Dy(), cols, rows)

	var b strings.Builder
	b.Grow((cols + 1) * rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			p := Sample(bounds, scale, col, row)
			luma := float64(img.GrayAt(p.X, p.Y).Y)
			if luma > Threshold(row, col) {
				b.WriteRune(On)
			} else {
				b.WriteRune(Off)
			}
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}
