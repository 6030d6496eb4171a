// Package cluster groups 2D point sets into candidate regions using
// mean-shift, a density-based mode-seeking method with no fixed number of
// clusters.
//
// Matched keypoint locations belonging to a real logo concentrate around the
// logo's position in the target image, while spurious matches scatter.
// Mean-shift finds the modes of the match density; low-support modes are
// treated as noise and discarded.
//
// # Known Limitation
//
// Large logos whose keypoints span a wide area can fragment into several
// clusters that each fall below the support threshold, so the logo is missed
// entirely. Fixing this needs a multi-scale re-analysis over an image
// pyramid; for the feasibility study the bandwidth is simply tuned per run.
package cluster

import (
	"math"
	"sort"
)

// Point is a 2D location in image space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Cluster is a candidate region: a density mode together with the input
// points that converged to it.
type Cluster struct {
	// Centroid is the converged mode location.
	Centroid Point `json:"centroid"`

	// Members holds the indices of the input points assigned to this
	// cluster, in ascending order.
	Members []int `json:"members"`

	// Support is len(Members). Clusters only exist with
	// Support >= Config.MinSupport.
	Support int `json:"support"`
}

// Config holds the tunable clustering parameters.
type Config struct {
	// Bandwidth is the flat-kernel radius in pixels. 0 estimates the
	// bandwidth from the data using BandwidthQuantile.
	Bandwidth float64

	// BandwidthQuantile is the pairwise-distance quantile used when
	// Bandwidth is 0. Default 0.02: small quantiles give fine-grained
	// clusters, larger ones merge neighbouring logos.
	BandwidthQuantile float64

	// MinSupport is the minimum number of member points a cluster must
	// have to be retained. Default 1 (keep everything).
	MinSupport int

	// MaxIterations bounds the mode-seeking loop. Default 100.
	MaxIterations int
}

func (c Config) withDefaults() Config {
	if c.BandwidthQuantile <= 0 {
		c.BandwidthQuantile = 0.02
	}
	if c.MinSupport <= 0 {
		c.MinSupport = 1
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = 100
	}
	return c
}

// convergence tolerance for mode seeking, in pixels.
const shiftEpsilon = 1e-3

// MeanShift partitions points into zero or more clusters.
//
// Every point is used as a seed and shifted to the mean of its flat-kernel
// neighbourhood until convergence. Modes closer than half a bandwidth are
// merged (first seed wins, which keeps the result deterministic), then each
// point is assigned to its nearest mode within one bandwidth; points with no
// mode in range are dropped as noise. Finally, clusters with fewer than
// MinSupport members are discarded.
func MeanShift(points []Point, cfg Config) []Cluster {
	cfg = cfg.withDefaults()
	if len(points) == 0 {
		return nil
	}

	bandwidth := cfg.Bandwidth
	if bandwidth <= 0 {
		bandwidth = EstimateBandwidth(points, cfg.BandwidthQuantile)
	}
	if bandwidth <= 0 {
		// All points coincide: one cluster holding everything.
		members := make([]int, len(points))
		for i := range members {
			members[i] = i
		}
		c := Cluster{Centroid: points[0], Members: members, Support: len(points)}
		if c.Support < cfg.MinSupport {
			return nil
		}
		return []Cluster{c}
	}

	// Shift every seed to its local mode.
	modes := make([]Point, len(points))
	for i, seed := range points {
		modes[i] = seek(points, seed, bandwidth, cfg.MaxIterations)
	}

	// Merge modes closer than bandwidth/2, earliest seed first.
	var centers []Point
	for _, m := range modes {
		merged := false
		for _, c := range centers {
			if distance(m, c) < bandwidth/2 {
				merged = true
				break
			}
		}
		if !merged {
			centers = append(centers, m)
		}
	}

	// Assign each point to the nearest center within one bandwidth.
	members := make([][]int, len(centers))
	for i, p := range points {
		best := -1
		bestDist := bandwidth
		for ci, c := range centers {
			if d := distance(p, c); d <= bestDist {
				best = ci
				bestDist = d
			}
		}
		if best >= 0 {
			members[best] = append(members[best], i)
		}
	}

	clusters := make([]Cluster, 0, len(centers))
	for ci := range centers {
		if len(members[ci]) < cfg.MinSupport {
			continue
		}
		clusters = append(clusters, Cluster{
			Centroid: centroid(points, members[ci]),
			Members:  members[ci],
			Support:  len(members[ci]),
		})
	}
	return clusters
}

// seek iterates the mean-shift update from a seed until the shift falls
// below tolerance or the iteration limit is reached.
func seek(points []Point, seed Point, bandwidth float64, maxIterations int) Point {
	current := seed
	for iter := 0; iter < maxIterations; iter++ {
		var sumX, sumY float64
		n := 0
		for _, p := range points {
			if distance(p, current) <= bandwidth {
				sumX += p.X
				sumY += p.Y
				n++
			}
		}
		if n == 0 {
			return current
		}
		next := Point{X: sumX / float64(n), Y: sumY / float64(n)}
		if distance(next, current) < shiftEpsilon {
			return next
		}
		current = next
	}
	return current
}

// EstimateBandwidth derives a bandwidth from the data: the given quantile of
// the sorted positive pairwise point distances. Zero-distance pairs are
// skipped; the extractor legitimately emits several keypoints at one location
// (one per orientation peak), and counting those duplicates would drag the
// quantile to zero and disable spatial separation entirely.
//
// Returns 0 only when all points coincide or fewer than two points exist.
func EstimateBandwidth(points []Point, quantile float64) float64 {
	n := len(points)
	if n < 2 {
		return 0
	}
	if quantile <= 0 {
		quantile = 0.02
	}
	if quantile > 1 {
		quantile = 1
	}

	dists := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if d := distance(points[i], points[j]); d > 0 {
				dists = append(dists, d)
			}
		}
	}
	if len(dists) == 0 {
		return 0
	}
	sort.Float64s(dists)

	idx := int(quantile * float64(len(dists)-1))
	return dists[idx]
}

func centroid(points []Point, members []int) Point {
	var sumX, sumY float64
	for _, i := range members {
		sumX += points[i].X
		sumY += points[i].Y
	}
	n := float64(len(members))
	return Point{X: sumX / n, Y: sumY / n}
}

func distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
