package detect

import (
	"image"
	"sort"

	"logospot/internal/cluster"
	"logospot/internal/feature"
	"logospot/internal/geom"
	"logospot/internal/match"
)

// Detection is one proposed logo location in a target image. Detections are
// immutable and consumed by the scorer.
type Detection struct {
	// Brand is the logo class of the matched template.
	Brand string `json:"brand"`

	// Box is the spatial extent (min/max coordinates) of the cluster's
	// member match locations in the target image.
	Box geom.Box `json:"box"`

	// Confidence grows monotonically with Support: more matched keypoints
	// agreeing on a location means a stronger detection. Computed as
	// support / (support + smoothing), so it lies in (0, 1).
	Confidence float64 `json:"confidence"`

	// Support is the number of matched keypoints in the cluster.
	Support int `json:"support"`
}

// Config holds the tunable detector parameters.
type Config struct {
	// Matcher configures descriptor matching per template.
	Matcher match.Options

	// Cluster configures the mean-shift grouping of matched locations.
	Cluster cluster.Config

	// ConfidenceSmoothing is the additive constant in the support-to-
	// confidence mapping. Default 10 (a cluster of 10 matches scores 0.5).
	ConfidenceSmoothing float64
}

func (c Config) withDefaults() Config {
	if c.ConfidenceSmoothing <= 0 {
		c.ConfidenceSmoothing = 10
	}
	return c
}

// Detector runs the keypoint-matching pipeline for a fixed set of
// templates. Once all templates are added, a Detector is read-only and safe
// for concurrent Detect calls.
type Detector struct {
	extractor *feature.Extractor
	cfg       Config
	templates []Template
}

// New creates a detector with no templates registered.
func New(extractor *feature.Extractor, cfg Config) *Detector {
	return &Detector{
		extractor: extractor,
		cfg:       cfg.withDefaults(),
	}
}

// AddTemplate registers a reference logo image under a brand label,
// together with its brightness-inverse variant. Returns the total number of
// keypoints extracted across both variants; zero is legitimate (the
// template simply never matches) and is worth logging by the caller.
func (d *Detector) AddTemplate(brand string, img image.Image, source TemplateSource) int {
	pair := newTemplatePair(brand, img, source, d.extractor)
	d.templates = append(d.templates, pair[0], pair[1])
	return len(pair[0].Keypoints) + len(pair[1].Keypoints)
}

// Templates returns the registered templates, two entries (normal and
// inverted) per reference image. The slice must not be modified.
func (d *Detector) Templates() []Template { return d.templates }

// Detect runs the full pipeline over one target image and returns all logo
// detections across all registered brands.
//
// Target keypoints are extracted once and matched against every template
// independently, so brand classes do not interact. A target with no
// extractable keypoints yields no detections. For a fixed configuration and
// template set the result is deterministic.
func (d *Detector) Detect(target image.Image) []Detection {
	targetKPs := d.extractor.Detect(target)
	if len(targetKPs) == 0 {
		return nil
	}

	var detections []Detection
	for i := range d.templates {
		detections = append(detections, d.detectTemplate(&d.templates[i], targetKPs)...)
	}
	return dedupe(detections)
}

// detectTemplate matches one template against the target keypoints and
// clusters the matched locations into detections.
func (d *Detector) detectTemplate(tmpl *Template, targetKPs []feature.Keypoint) []Detection {
	matches := match.BruteForce(tmpl.Keypoints, targetKPs, d.cfg.Matcher)
	if len(matches) == 0 {
		return nil
	}

	points := make([]cluster.Point, len(matches))
	for i, m := range matches {
		kp := targetKPs[m.TargetIndex]
		points[i] = cluster.Point{X: kp.X, Y: kp.Y}
	}

	clusters := cluster.MeanShift(points, d.cfg.Cluster)
	detections := make([]Detection, 0, len(clusters))
	for _, c := range clusters {
		xs := make([]float64, len(c.Members))
		ys := make([]float64, len(c.Members))
		for i, mi := range c.Members {
			xs[i] = points[mi].X
			ys[i] = points[mi].Y
		}
		detections = append(detections, Detection{
			Brand:      tmpl.Brand,
			Box:        boxFromPoints(xs, ys),
			Confidence: confidence(c.Support, d.cfg.ConfidenceSmoothing),
			Support:    c.Support,
		})
	}
	return detections
}

func confidence(support int, smoothing float64) float64 {
	s := float64(support)
	return s / (s + smoothing)
}

// dedupe merges same-brand detections whose boxes overlap. The normal and
// inverted variants of one template usually fire on the same logo instance;
// only the strongest detection per instance is kept. Detections are
// considered duplicates when their intersection covers more than half of
// the smaller box.
func dedupe(detections []Detection) []Detection {
	if len(detections) <= 1 {
		return detections
	}

	// Strongest first; stable ordering for deterministic output.
	sort.SliceStable(detections, func(i, j int) bool {
		if detections[i].Support != detections[j].Support {
			return detections[i].Support > detections[j].Support
		}
		return detections[i].Brand < detections[j].Brand
	})

	kept := make([]Detection, 0, len(detections))
	for _, det := range detections {
		duplicate := false
		for _, k := range kept {
			if k.Brand != det.Brand {
				continue
			}
			inter := det.Box.Intersection(k.Box)
			smaller := det.Box.Area()
			if k.Box.Area() < smaller {
				smaller = k.Box.Area()
			}
			if smaller > 0 && float64(inter) > 0.5*float64(smaller) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, det)
		}
	}
	return kept
}
