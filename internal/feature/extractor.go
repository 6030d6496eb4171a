package feature

import (
	"image"
	"math"

	"logospot/internal/imaging"
)

// Config holds the tunable parameters of the feature extractor. The zero
// value of any field selects a sensible default.
type Config struct {
	// Octaves is the number of pyramid octaves to search. 0 derives the
	// octave count from the image size (halving until the image is too
	// small for a descriptor window).
	Octaves int

	// ScalesPerOctave is the number of DoG intervals searched per octave.
	// Default 3.
	ScalesPerOctave int

	// Sigma is the base Gaussian blur of the first pyramid level.
	// Default 1.6.
	Sigma float64

	// ContrastThreshold rejects DoG extrema with absolute response below
	// this value; low-contrast extrema are unstable under noise.
	// Default 0.03 (grayscale values are in [0,1]).
	ContrastThreshold float64

	// EdgeRatio rejects extrema lying on edges rather than corners: the
	// ratio of principal curvatures must stay below this value.
	// Default 10.
	EdgeRatio float64
}

func (c Config) withDefaults() Config {
	if c.ScalesPerOctave <= 0 {
		c.ScalesPerOctave = 3
	}
	if c.Sigma <= 0 {
		c.Sigma = 1.6
	}
	if c.ContrastThreshold <= 0 {
		c.ContrastThreshold = 0.03
	}
	if c.EdgeRatio <= 0 {
		c.EdgeRatio = 10
	}
	return c
}

// Extractor computes keypoints and descriptors for images. An Extractor is
// stateless apart from its configuration and safe for concurrent use.
type Extractor struct {
	cfg Config
}

// NewExtractor creates an extractor, filling unset config fields with
// defaults.
func NewExtractor(cfg Config) *Extractor {
	return &Extractor{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration (defaults applied).
func (e *Extractor) Config() Config { return e.cfg }

// Detect extracts the keypoints of an image.
//
// The returned set is finite and unordered (iteration happens in raster
// order, but callers must not rely on that). Images too small or too
// uniform to carry stable features yield an empty slice, never an error.
func (e *Extractor) Detect(img image.Image) []Keypoint {
	return e.detectPlane(plane(imaging.Grayscale(img)))
}

// extremaMargin keeps extrema far enough from the plane border that the
// Hessian and orientation windows stay inside the image.
const extremaMargin = 5

func (e *Extractor) detectPlane(gray plane) []Keypoint {
	w, h := gray.width(), gray.height()
	if w < minOctaveSize || h < minOctaveSize {
		return nil
	}

	octaves := e.cfg.Octaves
	if octaves <= 0 {
		octaves = autoOctaves(w, h)
	}

	pyramid := buildPyramid(gray, octaves, e.cfg.ScalesPerOctave, e.cfg.Sigma)
	k := math.Pow(2, 1/float64(e.cfg.ScalesPerOctave))

	var keypoints []Keypoint
	for _, oct := range pyramid {
		ow, oh := oct.dogs[0].width(), oct.dogs[0].height()
		for i := 1; i <= e.cfg.ScalesPerOctave; i++ {
			// Sigma of the Gaussian level this DoG interval sits on, in
			// octave coordinates.
			levelSigma := e.cfg.Sigma * math.Pow(k, float64(i))
			grad := oct.gaussians[i]

			for y := extremaMargin; y < oh-extremaMargin; y++ {
				for x := extremaMargin; x < ow-extremaMargin; x++ {
					if !e.isExtremum(oct.dogs, i, x, y) {
						continue
					}
					if e.onEdge(oct.dogs[i], x, y) {
						continue
					}
					for _, orientation := range dominantOrientations(grad, x, y, levelSigma) {
						desc := computeDescriptor(grad, x, y, levelSigma, orientation)
						if desc == nil {
							continue
						}
						keypoints = append(keypoints, Keypoint{
							X:           float64(x) * oct.downscale,
							Y:           float64(y) * oct.downscale,
							Scale:       levelSigma * oct.downscale,
							Orientation: orientation,
							Descriptor:  desc,
						})
					}
				}
			}
		}
	}
	return keypoints
}

// autoOctaves picks the octave count so the smallest octave still fits a
// descriptor window.
func autoOctaves(w, h int) int {
	smaller := w
	if h < smaller {
		smaller = h
	}
	octaves := 0
	for smaller >= minOctaveSize {
		octaves++
		smaller /= 2
	}
	return octaves
}

// isExtremum reports whether the DoG value at (x, y) in interval i is a
// strict local extremum over its 26 space/scale neighbours and passes the
// contrast threshold. Ties are discarded, which keeps the result
// deterministic.
func (e *Extractor) isExtremum(dogs []plane, i, x, y int) bool {
	v := dogs[i][y][x]
	if math.Abs(v) < e.cfg.ContrastThreshold {
		return false
	}

	maximum, minimum := true, true
	for di := -1; di <= 1; di++ {
		d := dogs[i+di]
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if di == 0 && dy == 0 && dx == 0 {
					continue
				}
				n := d[y+dy][x+dx]
				if n >= v {
					maximum = false
				}
				if n <= v {
					minimum = false
				}
				if !maximum && !minimum {
					return false
				}
			}
		}
	}
	return maximum || minimum
}

// onEdge rejects extrema whose principal curvature ratio exceeds EdgeRatio.
// DoG responses are strong along edges but poorly localized there; only
// corner-like extrema survive.
func (e *Extractor) onEdge(d plane, x, y int) bool {
	dxx := d[y][x+1] + d[y][x-1] - 2*d[y][x]
	dyy := d[y+1][x] + d[y-1][x] - 2*d[y][x]
	dxy := (d[y+1][x+1] - d[y+1][x-1] - d[y-1][x+1] + d[y-1][x-1]) / 4

	tr := dxx + dyy
	det := dxx*dyy - dxy*dxy
	if det <= 0 {
		return true
	}
	r := e.cfg.EdgeRatio
	return tr*tr/det >= (r+1)*(r+1)/r
}

const orientationBins = 36

// dominantOrientations builds a Gaussian-weighted gradient-orientation
// histogram around (x, y) and returns every orientation whose (smoothed)
// histogram bin is a local peak within 80% of the global maximum. Peaks are
// returned in bin order.
func dominantOrientations(g plane, x, y int, sigma float64) []float64 {
	w, h := g.width(), g.height()
	windowSigma := 1.5 * sigma
	radius := int(math.Round(3 * windowSigma))
	if radius < 1 {
		radius = 1
	}

	var hist [orientationBins]float64
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			px, py := x+dx, y+dy
			if px < 1 || px >= w-1 || py < 1 || py >= h-1 {
				continue
			}
			gx := (g[py][px+1] - g[py][px-1]) / 2
			gy := (g[py+1][px] - g[py-1][px]) / 2
			mag := math.Sqrt(gx*gx + gy*gy)
			if mag == 0 {
				continue
			}
			weight := math.Exp(-float64(dx*dx+dy*dy) / (2 * windowSigma * windowSigma))
			bin := orientationBin(math.Atan2(gy, gx))
			hist[bin] += mag * weight
		}
	}

	smoothHistogram(&hist)

	maxVal := 0.0
	for _, v := range hist {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		return nil
	}

	var orientations []float64
	for b := 0; b < orientationBins; b++ {
		v := hist[b]
		prev := hist[(b+orientationBins-1)%orientationBins]
		next := hist[(b+1)%orientationBins]
		if v >= 0.8*maxVal && v > prev && v > next {
			orientations = append(orientations, binOrientation(b))
		}
	}
	if len(orientations) == 0 {
		// Perfectly flat histogram plateau; fall back to the first maximal bin.
		for b := 0; b < orientationBins; b++ {
			if hist[b] == maxVal {
				orientations = append(orientations, binOrientation(b))
				break
			}
		}
	}
	return orientations
}

// orientationBin maps an angle in (-pi, pi] to a histogram bin.
func orientationBin(angle float64) int {
	bin := int(math.Floor((angle + math.Pi) / (2 * math.Pi) * orientationBins))
	if bin < 0 {
		bin = 0
	}
	if bin >= orientationBins {
		bin = orientationBins - 1
	}
	return bin
}

// binOrientation maps a histogram bin back to the angle at its center.
func binOrientation(bin int) float64 {
	return -math.Pi + (float64(bin)+0.5)*(2*math.Pi/orientationBins)
}

// smoothHistogram applies a circular 3-tap box filter twice to suppress
// spurious peaks.
func smoothHistogram(hist *[orientationBins]float64) {
	for pass := 0; pass < 2; pass++ {
		var out [orientationBins]float64
		for b := 0; b < orientationBins; b++ {
			prev := hist[(b+orientationBins-1)%orientationBins]
			next := hist[(b+1)%orientationBins]
			out[b] = (prev + hist[b] + next) / 3
		}
		*hist = out
	}
}

const (
	descriptorCells   = 4 // spatial cells per axis
	descriptorOriBins = 8 // orientation bins per cell
	descriptorSamples = 16
)

// computeDescriptor builds the 4x4x8 gradient-histogram descriptor for a
// keypoint. Samples are taken on a 16x16 grid spaced by the keypoint scale
// and rotated into the keypoint's orientation frame, so the descriptor is
// invariant to the detected scale and rotation. Returns nil when the local
// region carries no gradient energy at all.
func computeDescriptor(g plane, x, y int, sigma, orientation float64) []float32 {
	w, h := g.width(), g.height()
	cosT := math.Cos(orientation)
	sinT := math.Sin(orientation)
	spacing := sigma
	half := float64(descriptorSamples) / 2

	desc := make([]float64, DescriptorSize)
	for j := 0; j < descriptorSamples; j++ {
		for i := 0; i < descriptorSamples; i++ {
			// Grid offset in keypoint frame, centered on the keypoint.
			u := (float64(i) - half + 0.5) * spacing
			v := (float64(j) - half + 0.5) * spacing

			// Rotate into image frame.
			px := x + int(math.Round(cosT*u-sinT*v))
			py := y + int(math.Round(sinT*u+cosT*v))
			if px < 1 || px >= w-1 || py < 1 || py >= h-1 {
				continue
			}

			gx := (g[py][px+1] - g[py][px-1]) / 2
			gy := (g[py+1][px] - g[py-1][px]) / 2
			mag := math.Sqrt(gx*gx + gy*gy)
			if mag == 0 {
				continue
			}

			// Gradient orientation relative to the keypoint frame.
			rel := math.Atan2(gy, gx) - orientation
			for rel < 0 {
				rel += 2 * math.Pi
			}
			for rel >= 2*math.Pi {
				rel -= 2 * math.Pi
			}
			obin := int(rel / (2 * math.Pi) * descriptorOriBins)
			if obin >= descriptorOriBins {
				obin = descriptorOriBins - 1
			}

			ci := i * descriptorCells / descriptorSamples
			cj := j * descriptorCells / descriptorSamples

			// Gaussian weighting over the window keeps samples near the
			// keypoint dominant.
			du := float64(i) - half + 0.5
			dv := float64(j) - half + 0.5
			weight := math.Exp(-(du*du + dv*dv) / (2 * half * half))

			desc[(cj*descriptorCells+ci)*descriptorOriBins+obin] += mag * weight
		}
	}

	// L2 normalize, clamp large components, renormalize. Clamping bounds the
	// influence of single high-contrast gradients (illumination robustness).
	if !normalize(desc) {
		return nil
	}
	clamped := false
	for i, v := range desc {
		if v > 0.2 {
			desc[i] = 0.2
			clamped = true
		}
	}
	if clamped {
		normalize(desc)
	}

	out := make([]float32, DescriptorSize)
	for i, v := range desc {
		out[i] = float32(v)
	}
	return out
}

// normalize scales a vector to unit L2 norm in place. Returns false for the
// zero vector.
func normalize(v []float64) bool {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return false
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] /= norm
	}
	return true
}
