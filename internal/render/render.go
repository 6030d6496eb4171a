// Package render produces annotated images for visual inspection: target
// photographs with detection boxes drawn over them, and contact-sheet
// collages of template logos.
package render

import (
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"logospot/internal/detect"
	"logospot/internal/geom"
)

const boxThickness = 3

var (
	matchedColor   = color.RGBA{0, 255, 0, 255} // green: matched detection
	unmatchedColor = color.RGBA{255, 0, 0, 255} // red: unmatched detection
	labelColor     = color.RGBA{255, 255, 0, 255}
)

// AnnotateDetections draws detection boxes and brand labels onto a copy of
// the image.
//
// When matched is non-nil it must be the same length as detections; matched
// detections are drawn green and unmatched ones red, mirroring a validation
// run. With matched == nil every brand gets its own deterministic color so
// multi-logo detections stay distinguishable.
func AnnotateDetections(img image.Image, detections []detect.Detection, matched []bool) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	for i, det := range detections {
		var c color.RGBA
		switch {
		case matched == nil:
			c = BrandColor(det.Brand)
		case matched[i]:
			c = matchedColor
		default:
			c = unmatchedColor
		}
		drawBox(out, det.Box, c)
		drawLabel(out, det.Brand, det.Box.X1, det.Box.Y1)
	}
	return out
}

// BrandColor returns a stable, saturated color for a brand name. The hue is
// derived from a hash of the name, so the same brand is always drawn in the
// same color across runs and images.
func BrandColor(brand string) color.RGBA {
	h := fnv.New32a()
	h.Write([]byte(brand))
	hue := float64(h.Sum32() % 360)
	r, g, b := colorful.Hsv(hue, 0.9, 0.95).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// drawBox draws a box outline of boxThickness pixels, growing inward so the
// outline stays within the box extent. Coordinates outside the image are
// skipped silently.
func drawBox(img *image.RGBA, box geom.Box, c color.RGBA) {
	bounds := img.Bounds()
	set := func(x, y int) {
		if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
			img.SetRGBA(x, y, c)
		}
	}

	for t := 0; t < boxThickness; t++ {
		for x := box.X1; x < box.X2; x++ {
			set(x, box.Y1+t)
			set(x, box.Y2-1-t)
		}
		for y := box.Y1; y < box.Y2; y++ {
			set(box.X1+t, y)
			set(box.X2-1-t, y)
		}
	}
}

// drawLabel renders a brand name just above the box's top-left corner,
// clamped into the image when the box touches the border.
func drawLabel(img *image.RGBA, text string, x, y int) {
	bounds := img.Bounds()
	baseline := y - 4
	if baseline-basicfont.Face7x13.Ascent < bounds.Min.Y {
		baseline = y + basicfont.Face7x13.Height + boxThickness
	}
	if x < bounds.Min.X {
		x = bounds.Min.X
	}

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(text)
}

// Collage pastes images into a left-to-right, top-to-bottom grid with the
// given number of columns. Cells take the size of the largest input image;
// smaller images are placed at their cell's top-left corner on a white
// background. Returns nil for an empty input.
func Collage(images []image.Image, cols int) *image.RGBA {
	if len(images) == 0 {
		return nil
	}
	if cols <= 0 {
		cols = 1
	}

	cellW, cellH := 0, 0
	for _, img := range images {
		if w := img.Bounds().Dx(); w > cellW {
			cellW = w
		}
		if h := img.Bounds().Dy(); h > cellH {
			cellH = h
		}
	}

	rows := (len(images) + cols - 1) / cols
	canvas := imaging.New(cellW*cols, cellH*rows, color.White)
	for i, img := range images {
		x := (i % cols) * cellW
		y := (i / cols) * cellH
		canvas = imaging.Paste(canvas, img, image.Pt(x, y))
	}

	out := image.NewRGBA(canvas.Bounds())
	draw.Draw(out, canvas.Bounds(), canvas, image.Point{}, draw.Src)
	return out
}

// CollageCell returns the placement box of the i-th image in a Collage with
// the given layout, letting callers build ground truth for synthetic
// collages.
func CollageCell(images []image.Image, cols, i int) geom.Box {
	if cols <= 0 {
		cols = 1
	}
	cellW, cellH := 0, 0
	for _, img := range images {
		if w := img.Bounds().Dx(); w > cellW {
			cellW = w
		}
		if h := img.Bounds().Dy(); h > cellH {
			cellH = h
		}
	}
	x := (i % cols) * cellW
	y := (i / cols) * cellH
	return geom.Box{
		X1: x,
		Y1: y,
		X2: x + images[i].Bounds().Dx(),
		Y2: y + images[i].Bounds().Dy(),
	}
}
