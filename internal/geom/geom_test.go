package geom

import (
	"image"
	"testing"
)

func TestBoxDimensions(t *testing.T) {
	b := Box{X1: 10, Y1: 20, X2: 40, Y2: 50}

	if b.Width() != 30 {
		t.Errorf("Width = %d, want 30", b.Width())
	}
	if b.Height() != 30 {
		t.Errorf("Height = %d, want 30", b.Height())
	}
	if b.Area() != 900 {
		t.Errorf("Area = %d, want 900", b.Area())
	}
	if b.Empty() {
		t.Error("box should not be empty")
	}
	if c := b.Center(); c.X != 25 || c.Y != 35 {
		t.Errorf("Center = %+v, want (25,35)", c)
	}
}

func TestBoxArea_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		box  Box
	}{
		{"inverted x", Box{X1: 10, Y1: 0, X2: 5, Y2: 10}},
		{"inverted y", Box{X1: 0, Y1: 10, X2: 10, Y2: 5}},
		{"zero width", Box{X1: 5, Y1: 0, X2: 5, Y2: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.box.Area() != 0 {
				t.Errorf("Area = %d, want 0", tt.box.Area())
			}
			if !tt.box.Empty() {
				t.Error("degenerate box should be empty")
			}
		})
	}
}

func TestBoxIntersection(t *testing.T) {
	tests := []struct {
		name string
		a, b Box
		want int
	}{
		{
			name: "partial overlap",
			a:    Box{X1: 0, Y1: 0, X2: 10, Y2: 10},
			b:    Box{X1: 5, Y1: 5, X2: 15, Y2: 15},
			want: 25,
		},
		{
			name: "contained",
			a:    Box{X1: 0, Y1: 0, X2: 10, Y2: 10},
			b:    Box{X1: 2, Y1: 2, X2: 6, Y2: 6},
			want: 16,
		},
		{
			name: "disjoint",
			a:    Box{X1: 0, Y1: 0, X2: 10, Y2: 10},
			b:    Box{X1: 20, Y1: 20, X2: 30, Y2: 30},
			want: 0,
		},
		{
			name: "touching edges",
			a:    Box{X1: 0, Y1: 0, X2: 10, Y2: 10},
			b:    Box{X1: 10, Y1: 0, X2: 20, Y2: 10},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersection(tt.b); got != tt.want {
				t.Errorf("Intersection = %d, want %d", got, tt.want)
			}
			// Intersection is symmetric.
			if got := tt.b.Intersection(tt.a); got != tt.want {
				t.Errorf("reverse Intersection = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBoxUnion(t *testing.T) {
	a := Box{X1: 0, Y1: 5, X2: 10, Y2: 10}
	b := Box{X1: 5, Y1: 0, X2: 20, Y2: 8}

	got := a.Union(b)
	want := Box{X1: 0, Y1: 0, X2: 20, Y2: 10}
	if got != want {
		t.Errorf("Union = %+v, want %+v", got, want)
	}
}

func TestBoxWithin(t *testing.T) {
	b := Box{X1: 0, Y1: 0, X2: 100, Y2: 50}

	if !b.Within(100, 50) {
		t.Error("box filling the image exactly should be within bounds")
	}
	if b.Within(99, 50) {
		t.Error("box wider than the image should not be within bounds")
	}
	if (Box{X1: -1, Y1: 0, X2: 10, Y2: 10}).Within(100, 100) {
		t.Error("negative origin should not be within bounds")
	}
}

func TestRectRoundTrip(t *testing.T) {
	b := Box{X1: 3, Y1: 4, X2: 30, Y2: 40}
	if got := FromRect(b.Rect()); got != b {
		t.Errorf("FromRect(Rect()) = %+v, want %+v", got, b)
	}
	if b.Rect() != image.Rect(3, 4, 30, 40) {
		t.Errorf("Rect = %v", b.Rect())
	}
}
