package feature

import "math"

// plane is a single-channel float image indexed [y][x].
type plane [][]float64

func newPlane(width, height int) plane {
	p := make(plane, height)
	for y := range p {
		p[y] = make([]float64, width)
	}
	return p
}

func (p plane) width() int {
	if len(p) == 0 {
		return 0
	}
	return len(p[0])
}

func (p plane) height() int { return len(p) }

// gaussianKernel builds a normalized 1D Gaussian kernel for the given sigma.
// The radius is 3*sigma, which captures >99% of the kernel mass.
func gaussianKernel(sigma float64) []float64 {
	radius := int(math.Ceil(3 * sigma))
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// blur applies a separable Gaussian blur. Borders use clamped (replicated)
// edge values, matching standard convolution boundary handling.
func (p plane) blur(sigma float64) plane {
	if sigma <= 0 {
		return p.clone()
	}
	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2
	w, h := p.width(), p.height()

	// Horizontal pass
	tmp := newPlane(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				sum += p[y][clamp(x+k, 0, w-1)] * kernel[k+radius]
			}
			tmp[y][x] = sum
		}
	}

	// Vertical pass
	out := newPlane(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				sum += tmp[clamp(y+k, 0, h-1)][x] * kernel[k+radius]
			}
			out[y][x] = sum
		}
	}
	return out
}

// subtract returns p - o, elementwise. Both planes must share dimensions.
func (p plane) subtract(o plane) plane {
	w, h := p.width(), p.height()
	out := newPlane(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y][x] = p[y][x] - o[y][x]
		}
	}
	return out
}

// downsample halves a plane by keeping every second pixel.
func (p plane) downsample() plane {
	w, h := p.width()/2, p.height()/2
	out := newPlane(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y][x] = p[2*y][2*x]
		}
	}
	return out
}

func (p plane) clone() plane {
	out := make(plane, len(p))
	for y := range p {
		out[y] = append([]float64(nil), p[y]...)
	}
	return out
}

// octave holds the Gaussian levels and their DoG differences for one octave
// of the scale-space pyramid.
type octave struct {
	gaussians []plane
	dogs      []plane
	// downscale is the factor mapping octave coordinates back to the
	// original image (1, 2, 4, ...).
	downscale float64
}

// buildPyramid constructs the Gaussian/DoG scale-space for a grayscale
// plane. Each octave carries scales+3 Gaussian levels so that extrema can
// be located in scales DoG intervals, after which the pyramid is
// downsampled by two for the next octave.
func buildPyramid(gray plane, octaves, scales int, sigma float64) []octave {
	k := math.Pow(2, 1/float64(scales))
	pyramid := make([]octave, 0, octaves)

	base := gray.blur(sigma)
	downscale := 1.0
	for o := 0; o < octaves; o++ {
		if base.width() < minOctaveSize || base.height() < minOctaveSize {
			break
		}

		oct := octave{downscale: downscale}
		oct.gaussians = make([]plane, scales+3)
		oct.gaussians[0] = base
		for i := 1; i < scales+3; i++ {
			// Incremental blur bringing level i-1 up to level i's sigma.
			prev := sigma * math.Pow(k, float64(i-1))
			step := prev * math.Sqrt(k*k-1)
			oct.gaussians[i] = oct.gaussians[i-1].blur(step)
		}

		oct.dogs = make([]plane, scales+2)
		for i := 0; i < scales+2; i++ {
			oct.dogs[i] = oct.gaussians[i+1].subtract(oct.gaussians[i])
		}

		pyramid = append(pyramid, oct)

		// The level at index `scales` has exactly twice the base sigma and
		// seeds the next octave.
		base = oct.gaussians[scales].downsample()
		downscale *= 2
	}
	return pyramid
}

// minOctaveSize is the smallest plane dimension worth processing; below
// this the descriptor window no longer fits.
const minOctaveSize = 16

func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
