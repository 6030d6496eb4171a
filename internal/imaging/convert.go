package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"

	"logospot/internal/geom"
)

// Grayscale converts an image to a luminance plane with values in [0, 1].
//
// Conversion uses ITU-R BT.601 weights (0.299*R + 0.587*G + 0.114*B). The
// result is indexed [y][x] relative to the image's own bounds, so callers
// can ignore non-zero bound origins.
func Grayscale(img image.Image) [][]float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	gray := make([][]float64, height)
	for y := 0; y < height; y++ {
		gray[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			rf := float64(r>>8) / 255.0
			gf := float64(g>>8) / 255.0
			bf := float64(b>>8) / 255.0
			gray[y][x] = 0.299*rf + 0.587*gf + 0.114*bf
		}
	}
	return gray
}

// Invert returns the brightness-inverse of an image.
//
// Logos printed light-on-dark produce mirrored gradient structure compared
// to their canonical dark-on-light reference, so templates are registered
// in both polarities.
func Invert(img image.Image) image.Image {
	return effect.Invert(img)
}

// CropBox extracts the region of img covered by box as a standalone image.
//
// The box must be non-empty and lie within the image bounds; annotation
// records straddling the image edge indicate bad ground truth and are
// rejected here rather than silently clamped.
func CropBox(img image.Image, box geom.Box) (image.Image, error) {
	if box.Empty() {
		return nil, fmt.Errorf("empty crop box %+v", box)
	}
	bounds := img.Bounds()
	if !box.Within(bounds.Dx(), bounds.Dy()) {
		return nil, fmt.Errorf("crop box (%d,%d)-(%d,%d) outside image bounds %dx%d",
			box.X1, box.Y1, box.X2, box.Y2, bounds.Dx(), bounds.Dy())
	}

	rect := box.Rect().Add(bounds.Min)
	return imaging.Crop(img, rect), nil
}
