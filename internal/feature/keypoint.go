package feature

// DescriptorSize is the length of every keypoint descriptor: a 4x4 grid of
// spatial cells with 8 orientation bins each.
const DescriptorSize = 128

// Keypoint is a distinctive, repeatable local image location together with
// its descriptor. Keypoints are never mutated after creation.
type Keypoint struct {
	// X, Y is the keypoint location in the coordinate frame of the image it
	// was extracted from, in pixels.
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// Scale is the detection scale in pixels (the sigma of the Gaussian
	// level the keypoint was found at, mapped back to image coordinates).
	Scale float64 `json:"scale"`

	// Orientation is the dominant local gradient orientation in radians,
	// in (-pi, pi].
	Orientation float64 `json:"orientation"`

	// Descriptor is the fixed-length, L2-normalized appearance vector.
	Descriptor []float32 `json:"-"`
}
