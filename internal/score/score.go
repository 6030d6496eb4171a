// Package score validates detections against ground-truth annotations and
// aggregates per-brand performance counts.
//
// A detection counts as a true positive when its bounding box sufficiently
// overlaps an unclaimed ground-truth box of the same brand. The overlap
// criterion is intersection area relative to the detection's own area
// (default threshold 0.20). Each ground-truth box can be claimed by at most
// one detection; detections are processed in decreasing confidence order
// and each claims its best-overlap unclaimed box, so the tie-break is
// deterministic and favours the strongest detections.
package score

import (
	"sort"

	"logospot/internal/dataset"
	"logospot/internal/detect"
)

// DefaultMinOverlap is the default fraction of a detection's area that must
// overlap a ground-truth box for the detection to count as a true positive.
const DefaultMinOverlap = 0.20

// Outcome accumulates the counts for one brand.
type Outcome struct {
	TruePositives  int `json:"true_positives"`
	FalsePositives int `json:"false_positives"`
	GroundTruth    int `json:"ground_truth"`
}

// ImageResult is the scoring outcome for a single image.
type ImageResult struct {
	// Matched marks, for each input detection (in the original order),
	// whether it was matched to a ground-truth box. Useful for rendering
	// hits and misses differently.
	Matched []bool `json:"matched"`

	// PerBrand holds the per-brand counts for this image.
	PerBrand map[string]Outcome `json:"per_brand"`
}

// MatchDetections scores one image's detections against its ground-truth
// annotations.
//
// minOverlap <= 0 selects DefaultMinOverlap. Detections for brands with no
// annotations in truth are false positives; annotations never claimed by a
// detection count toward GroundTruth only (missed detections).
func MatchDetections(detections []detect.Detection, truth []dataset.Record, minOverlap float64) *ImageResult {
	if minOverlap <= 0 {
		minOverlap = DefaultMinOverlap
	}

	result := &ImageResult{
		Matched:  make([]bool, len(detections)),
		PerBrand: make(map[string]Outcome),
	}

	for _, rec := range truth {
		o := result.PerBrand[rec.Brand]
		o.GroundTruth++
		result.PerBrand[rec.Brand] = o
	}

	// Strongest detections claim first. Sorting index copies keeps the
	// Matched mask aligned with the caller's detection order.
	order := make([]int, len(detections))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return detections[order[a]].Confidence > detections[order[b]].Confidence
	})

	claimed := make([]bool, len(truth))
	for _, di := range order {
		det := detections[di]
		detArea := det.Box.Area()

		// Best-overlap-wins among unclaimed same-brand boxes.
		best := -1
		bestOverlap := 0
		for ti, rec := range truth {
			if claimed[ti] || rec.Brand != det.Brand {
				continue
			}
			overlap := det.Box.Intersection(rec.Box)
			if overlap > bestOverlap {
				best = ti
				bestOverlap = overlap
			}
		}

		o := result.PerBrand[det.Brand]
		if best >= 0 && detArea > 0 && float64(bestOverlap) > minOverlap*float64(detArea) {
			claimed[best] = true
			result.Matched[di] = true
			o.TruePositives++
		} else {
			o.FalsePositives++
		}
		result.PerBrand[det.Brand] = o
	}
	return result
}

// Report aggregates scoring outcomes across a batch of images.
type Report struct {
	// PerBrand holds the accumulated counts for every brand seen in either
	// detections or ground truth.
	PerBrand map[string]Outcome `json:"per_brand"`

	// Images is the number of images scored.
	Images int `json:"images"`

	// Skipped is the number of images that could not be processed (missing
	// or corrupt files); they are excluded from normalization.
	Skipped int `json:"skipped"`
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{PerBrand: make(map[string]Outcome)}
}

// Add folds one image's result into the report.
func (r *Report) Add(res *ImageResult) {
	r.Images++
	for brand, o := range res.PerBrand {
		acc := r.PerBrand[brand]
		acc.TruePositives += o.TruePositives
		acc.FalsePositives += o.FalsePositives
		acc.GroundTruth += o.GroundTruth
		r.PerBrand[brand] = acc
	}
}

// Totals sums the per-brand outcomes.
func (r *Report) Totals() Outcome {
	var total Outcome
	for _, o := range r.PerBrand {
		total.TruePositives += o.TruePositives
		total.FalsePositives += o.FalsePositives
		total.GroundTruth += o.GroundTruth
	}
	return total
}

// TruePositiveRatio is the fraction of ground-truth boxes recovered, or 0
// when no ground truth exists.
func (r *Report) TruePositiveRatio() float64 {
	t := r.Totals()
	if t.GroundTruth == 0 {
		return 0
	}
	return float64(t.TruePositives) / float64(t.GroundTruth)
}

// FalsePositivesPerImage normalizes the false-positive count by the number
// of images scored.
func (r *Report) FalsePositivesPerImage() float64 {
	if r.Images == 0 {
		return 0
	}
	return float64(r.Totals().FalsePositives) / float64(r.Images)
}

// Brands lists the brands present in the report, sorted.
func (r *Report) Brands() []string {
	brands := make([]string, 0, len(r.PerBrand))
	for brand := range r.PerBrand {
		brands = append(brands, brand)
	}
	sort.Strings(brands)
	return brands
}
