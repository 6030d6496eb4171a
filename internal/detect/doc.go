// Package detect orchestrates the keypoint-matching logo detector.
//
// A Detector owns a set of template logos (reference images with
// precomputed keypoints) and runs the per-image pipeline:
//
//	target keypoints -> descriptor matching per template -> mean-shift
//	clustering of matched locations -> one Detection per retained cluster
//
// Template keypoints are the study's only "training" artifact: they are
// cheap to recompute and never persisted. Templates can be built from ideal
// canonical logo images or from live in-dataset crops; the two construction
// strategies are interchangeable and differ only in where the reference
// pixels come from. Each registered template also contributes its
// brightness-inverse variant, which catches logos printed light-on-dark.
//
// Brand classes are processed independently: a multi-logo photograph can
// yield detections for several brands at once, and a template with zero
// usable keypoints simply contributes zero detections without disturbing
// the other classes.
package detect
