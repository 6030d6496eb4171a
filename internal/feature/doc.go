// Package feature extracts scale- and rotation-invariant local keypoints
// and descriptors from images.
//
// The extractor implements a difference-of-Gaussians (DoG) scale-space
// detector with gradient-histogram descriptors. Local features were chosen
// over holistic descriptors or learned classifiers because the study has
// only single digits of reference images per logo class, and test
// photographs are frequently occluded or blurred: a logo remains detectable
// as long as a subset of its keypoints survives.
//
// # Pipeline
//
//  1. Grayscale conversion and Gaussian scale-space pyramid construction
//  2. DoG extrema detection across space and scale
//  3. Low-contrast and edge-response rejection
//  4. Dominant orientation assignment from a gradient-orientation histogram
//  5. 4x4x8 gradient-histogram descriptor (128 dimensions, L2-normalized)
//     computed in the keypoint's own scale and orientation frame
//
// # Degenerate Inputs
//
// Near-uniform images (flat color, heavy blur) legitimately yield few or
// zero keypoints. That is an expected outcome, not an error: Detect returns
// an empty slice and downstream stages degrade to zero detections.
//
// # Determinism
//
// For a fixed Config, Detect is fully deterministic: pixels are scanned in
// raster order, orientation peaks are emitted in bin order, and no
// randomized tie-breaking is involved.
package feature
