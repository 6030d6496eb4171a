// Package study wires the pipeline stages together for batch runs: load the
// annotation store, build templates, detect logos over every annotated
// image and aggregate a validation report.
//
// Runs are single-threaded and batch-oriented. Each image is processed
// independently and statelessly; template descriptors are the only shared
// resource and they are read-only, so no locking discipline is needed.
package study

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"logospot/internal/cluster"
	"logospot/internal/config"
	"logospot/internal/dataset"
	"logospot/internal/detect"
	"logospot/internal/feature"
	"logospot/internal/imaging"
	"logospot/internal/match"
	"logospot/internal/render"
	"logospot/internal/score"
)

// Runner holds everything one study run needs. Build it once with NewRunner
// and reuse it across Run and DetectFile calls.
type Runner struct {
	cfg      *config.Config
	log      *slog.Logger
	store    *dataset.Store
	detector *detect.Detector
	cache    *imaging.ImageCache
}

// NewRunner loads the annotation store, validates it, and builds the
// detector with its templates according to the configuration.
//
// Load-time problems with individual annotation rows are logged, not fatal;
// a missing annotation file or an unloadable template set is fatal.
func NewRunner(cfg *config.Config, log *slog.Logger) (*Runner, error) {
	records, report, err := dataset.LoadFile(cfg.Dataset.Annotations)
	if err != nil {
		return nil, err
	}
	log.Info("annotations loaded",
		"parsed", report.Parsed,
		"dropped", report.Dropped)
	for reason, n := range report.DropReasons {
		log.Warn("annotation rows dropped", "reason", reason, "count", n)
	}

	if cfg.Dataset.MaxBoxDim > 0 {
		before := len(records)
		records = dataset.FilterBySize(records, cfg.Dataset.MinBoxDim, cfg.Dataset.MaxBoxDim)
		log.Info("size filter applied",
			"kept", len(records),
			"removed", before-len(records),
			"min_dim", cfg.Dataset.MinBoxDim,
			"max_dim", cfg.Dataset.MaxBoxDim)
	}

	store := dataset.NewStore(records)

	if cfg.Dataset.ReferenceCounts != "" {
		reference, err := dataset.LoadReferenceCountsFile(cfg.Dataset.ReferenceCounts)
		if err != nil {
			return nil, err
		}
		check := dataset.CrossCheck(store, reference)
		if check.Passed {
			log.Info("reference count cross-check passed", "brands", check.BrandsChecked)
		} else {
			log.Warn("reference count cross-check failed", "mismatches", len(check.Mismatches))
			for _, m := range check.Mismatches {
				log.Warn("count mismatch", "brand", m.Brand, "loaded", m.Loaded, "published", m.Published)
			}
		}
	}

	r := &Runner{
		cfg:   cfg,
		log:   log,
		store: store,
		cache: imaging.NewImageCache(),
	}

	extractor := feature.NewExtractor(feature.Config{
		Octaves:           cfg.Extractor.Octaves,
		ScalesPerOctave:   cfg.Extractor.ScalesPerOctave,
		Sigma:             cfg.Extractor.Sigma,
		ContrastThreshold: cfg.Extractor.ContrastThreshold,
		EdgeRatio:         cfg.Extractor.EdgeRatio,
	})
	r.detector = detect.New(extractor, detect.Config{
		Matcher: match.Options{
			MaxDistance: cfg.Matcher.MaxDistance,
			CrossCheck:  cfg.Matcher.CrossCheck,
		},
		Cluster: cluster.Config{
			Bandwidth:         cfg.Cluster.Bandwidth,
			BandwidthQuantile: cfg.Cluster.BandwidthQuantile,
			MinSupport:        cfg.Cluster.MinSupport,
		},
	})

	if err := r.loadTemplates(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Runner) loadTemplates() error {
	switch r.cfg.Templates.Strategy {
	case config.StrategyIdeal:
		n, err := detect.LoadIdealTemplates(r.detector, r.cfg.Templates.Dir)
		if err != nil {
			return err
		}
		r.log.Info("templates loaded", "strategy", "ideal", "brands", n)
	case config.StrategyLive:
		n, err := detect.LoadLiveTemplates(r.detector, r.store, r.cfg.Dataset.ImagesDir, r.cache, detect.LiveTemplateConfig{
			PerBrand: r.cfg.Templates.PerBrand,
			OKOnly:   r.cfg.Templates.OKOnly,
		})
		if err != nil {
			return err
		}
		r.log.Info("templates loaded", "strategy", "live", "crops", n)
	default:
		return fmt.Errorf("unknown template strategy %q", r.cfg.Templates.Strategy)
	}

	for _, tmpl := range r.detector.Templates() {
		if len(tmpl.Keypoints) == 0 && !tmpl.Inverted {
			r.log.Warn("template has no keypoints", "brand", tmpl.Brand)
		}
	}
	return nil
}

// Store exposes the loaded annotation store (read-only).
func (r *Runner) Store() *dataset.Store { return r.store }

// Detector exposes the configured detector (read-only once built).
func (r *Runner) Detector() *detect.Detector { return r.detector }

// Run validates the detector over every annotated image and returns the
// aggregated report.
//
// Missing or corrupt image files are logged and counted as skipped; they
// never abort the batch. The cache entry for each target is evicted after
// scoring to keep memory flat over long runs.
func (r *Runner) Run() (*score.Report, error) {
	report := score.NewReport()

	for _, imageFile := range r.store.Images() {
		path := filepath.Join(r.cfg.Dataset.ImagesDir, imageFile)
		img, err := r.cache.Load(path)
		if err != nil {
			r.log.Warn("skipping image", "image", imageFile, "error", err)
			report.Skipped++
			continue
		}

		detections := r.detector.Detect(img)
		truth := r.store.ByImage(imageFile)
		result := score.MatchDetections(detections, truth, r.cfg.Scorer.MinOverlap)
		report.Add(result)

		r.log.Debug("image scored",
			"image", imageFile,
			"detections", len(detections),
			"ground_truth", len(truth))

		if r.cfg.Output.Annotate && r.cfg.Output.Dir != "" {
			annotated := render.AnnotateDetections(img, detections, result.Matched)
			if err := writePNG(filepath.Join(r.cfg.Output.Dir, "annotated_"+imageFile+".png"), annotated); err != nil {
				r.log.Warn("failed to write annotated image", "image", imageFile, "error", err)
			}
		}

		r.cache.Evict(path)
	}

	r.log.Info("validation run complete",
		"images", report.Images,
		"skipped", report.Skipped,
		"true_positive_ratio", report.TruePositiveRatio(),
		"false_positives_per_image", report.FalsePositivesPerImage())
	return report, nil
}

// DetectFile runs detection over a single image file and returns the
// detections plus an annotated copy using per-brand colors.
func (r *Runner) DetectFile(path string) ([]detect.Detection, *image.RGBA, error) {
	img, err := imaging.LoadImage(path)
	if err != nil {
		return nil, nil, err
	}
	detections := r.detector.Detect(img)
	annotated := render.AnnotateDetections(img, detections, nil)
	return detections, annotated, nil
}

func writePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}
