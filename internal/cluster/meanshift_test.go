package cluster

import (
	"math"
	"testing"
)

// blob generates count points on a tight grid around (cx, cy).
func blob(cx, cy float64, count int) []Point {
	points := make([]Point, 0, count)
	for i := 0; i < count; i++ {
		points = append(points, Point{
			X: cx + float64(i%3),
			Y: cy + float64(i/3),
		})
	}
	return points
}

func TestMeanShift_TwoGroups(t *testing.T) {
	points := append(blob(10, 10, 9), blob(200, 200, 9)...)

	clusters := MeanShift(points, Config{Bandwidth: 20})
	if len(clusters) != 2 {
		t.Fatalf("got %d clusters, want 2", len(clusters))
	}

	for _, c := range clusters {
		if c.Support != 9 {
			t.Errorf("cluster support = %d, want 9", c.Support)
		}
		if c.Support != len(c.Members) {
			t.Errorf("Support %d disagrees with len(Members) %d", c.Support, len(c.Members))
		}
		nearFirst := distance(c.Centroid, Point{11, 11}) < 5
		nearSecond := distance(c.Centroid, Point{201, 201}) < 5
		if !nearFirst && !nearSecond {
			t.Errorf("centroid %+v not near either group", c.Centroid)
		}
		for i := 1; i < len(c.Members); i++ {
			if c.Members[i] <= c.Members[i-1] {
				t.Errorf("members not in ascending order: %v", c.Members)
			}
		}
	}
}

func TestMeanShift_MinSupport(t *testing.T) {
	points := blob(50, 50, 8)

	// Support exactly at the threshold: cluster survives.
	clusters := MeanShift(points, Config{Bandwidth: 20, MinSupport: 8})
	if len(clusters) != 1 {
		t.Fatalf("support == MinSupport: got %d clusters, want 1", len(clusters))
	}

	// One above the support: nothing survives.
	clusters = MeanShift(points, Config{Bandwidth: 20, MinSupport: 9})
	if len(clusters) != 0 {
		t.Fatalf("support < MinSupport: got %d clusters, want 0", len(clusters))
	}
}

func TestMeanShift_NoiseDropped(t *testing.T) {
	points := append(blob(10, 10, 9), Point{X: 500, Y: 500})

	clusters := MeanShift(points, Config{Bandwidth: 20, MinSupport: 2})
	if len(clusters) != 1 {
		t.Fatalf("got %d clusters, want 1", len(clusters))
	}
	for _, idx := range clusters[0].Members {
		if idx == 9 {
			t.Error("outlier point assigned to the main cluster")
		}
	}
}

func TestMeanShift_EmptyInput(t *testing.T) {
	if clusters := MeanShift(nil, Config{}); clusters != nil {
		t.Errorf("nil input produced %d clusters", len(clusters))
	}
}

func TestMeanShift_CoincidentPoints(t *testing.T) {
	points := []Point{{5, 5}, {5, 5}, {5, 5}}

	clusters := MeanShift(points, Config{})
	if len(clusters) != 1 {
		t.Fatalf("got %d clusters, want 1", len(clusters))
	}
	c := clusters[0]
	if c.Support != 3 {
		t.Errorf("support = %d, want 3", c.Support)
	}
	if c.Centroid.X != 5 || c.Centroid.Y != 5 {
		t.Errorf("centroid = %+v, want (5, 5)", c.Centroid)
	}
}

func TestMeanShift_Deterministic(t *testing.T) {
	points := append(blob(10, 10, 9), blob(80, 80, 9)...)
	cfg := Config{MinSupport: 3}

	first := MeanShift(points, cfg)
	second := MeanShift(points, cfg)
	if len(first) != len(second) {
		t.Fatalf("runs disagree on cluster count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Centroid != second[i].Centroid || first[i].Support != second[i].Support {
			t.Errorf("cluster %d differs between runs", i)
		}
	}
}

func TestEstimateBandwidth(t *testing.T) {
	points := []Point{{0, 0}, {3, 4}, {0, 0}}

	// Positive pairwise distances are 5 and 5; the duplicate pair's zero
	// distance does not enter the quantile.
	if bw := EstimateBandwidth(points, 0.5); bw != 5 {
		t.Errorf("bandwidth = %f, want 5", bw)
	}
	if bw := EstimateBandwidth(points, 0.001); bw != 5 {
		t.Errorf("bandwidth with duplicates = %f, want 5", bw)
	}
	if bw := EstimateBandwidth([]Point{{1, 1}, {1, 1}, {1, 1}}, 0.5); bw != 0 {
		t.Errorf("coincident points: bandwidth = %f, want 0", bw)
	}
	if bw := EstimateBandwidth([]Point{{1, 1}}, 0.5); bw != 0 {
		t.Errorf("single point: bandwidth = %f, want 0", bw)
	}
	if bw := EstimateBandwidth(nil, 0.5); bw != 0 {
		t.Errorf("no points: bandwidth = %f, want 0", bw)
	}
}

func TestMeanShift_DuplicatesDoNotAbsorbScatter(t *testing.T) {
	// Multiple orientation peaks put several keypoints at the same location.
	// The dense duplicate stack must not zero out the estimated bandwidth and
	// pull far-away scatter into one catch-all cluster.
	points := make([]Point, 0, 15)
	for i := 0; i < 10; i++ {
		points = append(points, Point{X: 100, Y: 100})
	}
	scatter := []Point{{400, 100}, {100, 400}, {500, 500}, {450, 50}, {50, 450}}
	points = append(points, scatter...)

	clusters := MeanShift(points, Config{MinSupport: 6})
	if len(clusters) != 1 {
		t.Fatalf("got %d clusters, want 1: %+v", len(clusters), clusters)
	}
	c := clusters[0]
	if c.Centroid.X != 100 || c.Centroid.Y != 100 {
		t.Errorf("centroid = %+v, want (100, 100)", c.Centroid)
	}
	for _, idx := range c.Members {
		if idx >= 10 {
			t.Errorf("scatter point %d absorbed into the dense cluster", idx)
		}
	}
}

func TestDistance(t *testing.T) {
	if d := distance(Point{0, 0}, Point{3, 4}); math.Abs(d-5) > 1e-12 {
		t.Errorf("distance = %f, want 5", d)
	}
}
