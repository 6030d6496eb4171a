// Package geom provides the shared pixel-space geometry types used across
// the detection pipeline: axis-aligned bounding boxes and integer points.
//
// The coordinate convention follows standard image bounds:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive for iteration, inclusive for bounds)
//   - X increases rightward, Y increases downward, origin at top-left
package geom

import "image"

// Box represents an axis-aligned rectangular bounding box in pixel coordinates.
type Box struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Width returns the horizontal extent of the box in pixels.
func (b Box) Width() int { return b.X2 - b.X1 }

// Height returns the vertical extent of the box in pixels.
func (b Box) Height() int { return b.Y2 - b.Y1 }

// Area returns the box area in square pixels. Degenerate boxes
// (X2 <= X1 or Y2 <= Y1) have zero area.
func (b Box) Area() int {
	w, h := b.Width(), b.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Empty reports whether the box encloses no pixels.
func (b Box) Empty() bool { return b.Area() == 0 }

// Center returns the center point of the box (integer division).
func (b Box) Center() Point {
	return Point{X: (b.X1 + b.X2) / 2, Y: (b.Y1 + b.Y2) / 2}
}

// Intersection returns the area of overlap between two boxes in square
// pixels, or 0 if they do not overlap.
func (b Box) Intersection(o Box) int {
	ox := min(b.X2, o.X2) - max(b.X1, o.X1)
	oy := min(b.Y2, o.Y2) - max(b.Y1, o.Y1)
	if ox <= 0 || oy <= 0 {
		return 0
	}
	return ox * oy
}

// Union returns the smallest box enclosing both boxes.
func (b Box) Union(o Box) Box {
	return Box{
		X1: min(b.X1, o.X1),
		Y1: min(b.Y1, o.Y1),
		X2: max(b.X2, o.X2),
		Y2: max(b.Y2, o.Y2),
	}
}

// Within reports whether the box lies entirely inside an image of the given
// dimensions (width x height, origin at 0,0).
func (b Box) Within(width, height int) bool {
	return b.X1 >= 0 && b.Y1 >= 0 && b.X2 <= width && b.Y2 <= height
}

// Rect converts the box to a standard library image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// FromRect converts an image.Rectangle to a Box.
func FromRect(r image.Rectangle) Box {
	return Box{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
