package detect

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"logospot/internal/dataset"
	"logospot/internal/feature"
	"logospot/internal/geom"
	"logospot/internal/imaging"
)

// TemplateSource identifies how a template's reference pixels were obtained.
type TemplateSource string

const (
	// SourceIdeal marks templates built from canonical logo artwork.
	SourceIdeal TemplateSource = "ideal"

	// SourceLive marks templates cropped from annotated dataset photographs.
	SourceLive TemplateSource = "live"
)

// Template is one reference logo: a brand label plus the precomputed
// keypoints of its reference image. Templates are immutable once built and
// shared read-only across target images.
type Template struct {
	Brand     string         `json:"brand"`
	Source    TemplateSource `json:"source"`
	Inverted  bool           `json:"inverted"`
	Keypoints []feature.Keypoint
}

// newTemplatePair extracts keypoints for an image and its brightness
// inverse, producing the two template variants registered per reference
// image. Variants with zero keypoints are still returned; they vacuously
// produce no matches.
func newTemplatePair(brand string, img image.Image, source TemplateSource, ex *feature.Extractor) [2]Template {
	return [2]Template{
		{Brand: brand, Source: source, Keypoints: ex.Detect(img)},
		{Brand: brand, Source: source, Inverted: true, Keypoints: ex.Detect(imaging.Invert(img))},
	}
}

// RegistryFile is the JSON file inside a template directory listing the
// registered logo names. Each name maps to an image file in the same
// directory named after the lowercased brand.
const RegistryFile = "registered_logos.json"

// LoadIdealTemplates registers a directory of canonical logo images with
// the detector.
//
// The directory must contain RegistryFile holding a JSON array of brand
// names; for each name the image <lower(name)>.jpg is loaded. A missing or
// undecodable template image is a configuration error and aborts the load.
// Returns the number of brands registered.
func LoadIdealTemplates(d *Detector, dir string) (int, error) {
	data, err := os.ReadFile(filepath.Join(dir, RegistryFile))
	if err != nil {
		return 0, fmt.Errorf("failed to read template registry: %w", err)
	}

	var brands []string
	if err := json.Unmarshal(data, &brands); err != nil {
		return 0, fmt.Errorf("failed to parse template registry: %w", err)
	}

	for _, brand := range brands {
		path := filepath.Join(dir, strings.ToLower(brand)+".jpg")
		img, err := imaging.LoadImage(path)
		if err != nil {
			return 0, fmt.Errorf("template %q: %w", brand, err)
		}
		d.AddTemplate(brand, img, SourceIdeal)
	}
	return len(brands), nil
}

// LiveTemplateConfig controls template construction from dataset crops.
type LiveTemplateConfig struct {
	// PerBrand is the number of annotation crops registered per brand.
	// Default 1; the study regime is single digits of reference images.
	PerBrand int

	// OKOnly restricts crops to annotations with the OK quality flag.
	OKOnly bool
}

// LoadLiveTemplates registers templates cropped from annotated dataset
// photographs.
//
// For each brand in the store, up to cfg.PerBrand annotation boxes are
// cropped from their photographs (in store order, so the choice is
// deterministic) and registered as templates. Unreadable photographs or
// out-of-bounds boxes skip to the brand's next annotation rather than
// aborting: bad rows are expected in the raw dataset. Returns the number of
// crops registered.
func LoadLiveTemplates(d *Detector, store *dataset.Store, imagesDir string, cache *imaging.ImageCache, cfg LiveTemplateConfig) (int, error) {
	if cfg.PerBrand <= 0 {
		cfg.PerBrand = 1
	}

	added := 0
	for _, brand := range sortedBrands(store) {
		taken := 0
		for _, rec := range store.ByBrand(brand) {
			if taken >= cfg.PerBrand {
				break
			}
			if cfg.OKOnly && rec.Quality != dataset.QualityOK {
				continue
			}
			img, err := cache.Load(filepath.Join(imagesDir, rec.ImageFile))
			if err != nil {
				continue
			}
			crop, err := imaging.CropBox(img, rec.Box)
			if err != nil {
				continue
			}
			d.AddTemplate(brand, crop, SourceLive)
			taken++
			added++
		}
	}
	if added == 0 {
		return 0, fmt.Errorf("no usable annotation crops found under %s", imagesDir)
	}
	return added, nil
}

// sortedBrands lists the store's brands alphabetically so template
// registration order is deterministic.
func sortedBrands(store *dataset.Store) []string {
	counts := store.BrandCounts()
	brands := make([]string, 0, len(counts))
	for brand := range counts {
		brands = append(brands, brand)
	}
	sort.Strings(brands)
	return brands
}

// boxFromPoints returns the axis-aligned extent of a set of 2D locations.
func boxFromPoints(xs, ys []float64) geom.Box {
	minX, minY := xs[0], ys[0]
	maxX, maxY := xs[0], ys[0]
	for i := 1; i < len(xs); i++ {
		if xs[i] < minX {
			minX = xs[i]
		}
		if xs[i] > maxX {
			maxX = xs[i]
		}
		if ys[i] < minY {
			minY = ys[i]
		}
		if ys[i] > maxY {
			maxY = ys[i]
		}
	}
	return geom.Box{
		X1: int(minX),
		Y1: int(minY),
		X2: int(maxX) + 1,
		Y2: int(maxY) + 1,
	}
}
