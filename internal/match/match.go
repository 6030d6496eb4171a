// Package match finds correspondences between two sets of keypoint
// descriptors using exhaustive nearest-neighbour search.
//
// Brute-force matching is used deliberately: for the dataset sizes of a
// feasibility study it is simple and exact. It is also the primary
// efficiency bottleneck of the pipeline, since every template descriptor is
// compared against every target descriptor, and the natural first
// optimization target if the study graduates (approximate nearest-neighbour
// indexing, e.g. k-d trees or LSH).
package match

import (
	"logospot/internal/feature"
)

// Match pairs a template keypoint with a target keypoint. Matches are
// transient: they exist only within one detector invocation.
type Match struct {
	// TemplateIndex is the index into the template keypoint slice.
	TemplateIndex int `json:"template_index"`

	// TargetIndex is the index into the target keypoint slice.
	TargetIndex int `json:"target_index"`

	// Distance is the squared L2 distance between the two descriptors.
	// Descriptors are unit-normalized, so it lies in [0, 2].
	Distance float64 `json:"distance"`
}

// Options controls the matching behaviour.
type Options struct {
	// MaxDistance discards pairings whose squared descriptor distance
	// exceeds this value. 0 disables the filter.
	MaxDistance float64

	// CrossCheck keeps a pair only when the two keypoints are mutually
	// nearest neighbours, the standard symmetric consistency test.
	CrossCheck bool
}

// BruteForce matches every target keypoint to its nearest template keypoint
// in descriptor space.
//
// With CrossCheck enabled, only mutually-nearest pairs survive, so each
// template keypoint appears in at most one match. No ordering among the
// returned matches is guaranteed; determinism follows from stable distance
// computation and first-minimum tie-breaking. Either input being empty
// yields no matches.
func BruteForce(template, target []feature.Keypoint, opts Options) []Match {
	if len(template) == 0 || len(target) == 0 {
		return nil
	}

	// Nearest template keypoint for each target keypoint.
	nearestTemplate := make([]int, len(target))
	nearestDist := make([]float64, len(target))
	for ti := range target {
		nearestTemplate[ti], nearestDist[ti] = nearest(target[ti].Descriptor, template)
	}

	// For cross-checking: nearest target keypoint for each template keypoint.
	var nearestTarget []int
	if opts.CrossCheck {
		nearestTarget = make([]int, len(template))
		for mi := range template {
			nearestTarget[mi], _ = nearest(template[mi].Descriptor, target)
		}
	}

	matches := make([]Match, 0, len(target))
	for ti := range target {
		mi := nearestTemplate[ti]
		if mi < 0 {
			continue
		}
		if opts.MaxDistance > 0 && nearestDist[ti] > opts.MaxDistance {
			continue
		}
		if opts.CrossCheck && nearestTarget[mi] != ti {
			continue
		}
		matches = append(matches, Match{
			TemplateIndex: mi,
			TargetIndex:   ti,
			Distance:      nearestDist[ti],
		})
	}
	return matches
}

// nearest returns the index and squared distance of the closest descriptor
// in candidates, or (-1, 0) when no candidate has a descriptor. Ties keep
// the lowest index.
func nearest(desc []float32, candidates []feature.Keypoint) (int, float64) {
	best := -1
	bestDist := 0.0
	for i := range candidates {
		if len(candidates[i].Descriptor) == 0 || len(desc) == 0 {
			continue
		}
		d := squaredDistance(desc, candidates[i].Descriptor)
		if best < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}

// squaredDistance computes the squared L2 distance between two descriptors
// of equal length.
func squaredDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
