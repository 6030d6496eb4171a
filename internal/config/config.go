// Package config loads the run configuration for the detection study.
//
// All pipeline parameters the study tunes between runs (extraction
// thresholds, matcher distance cutoff, mean-shift bandwidth, cluster
// support minimum, scoring overlap) live here rather than as hidden
// constants, so a run is fully described by its config file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TemplateStrategy selects how reference templates are built.
type TemplateStrategy string

const (
	// StrategyIdeal builds templates from canonical logo artwork in the
	// template directory.
	StrategyIdeal TemplateStrategy = "ideal"

	// StrategyLive builds templates from annotated dataset crops.
	StrategyLive TemplateStrategy = "live"
)

// Config is the root run configuration.
type Config struct {
	Dataset   DatasetConfig   `yaml:"dataset"`
	Templates TemplatesConfig `yaml:"templates"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Matcher   MatcherConfig   `yaml:"matcher"`
	Cluster   ClusterConfig   `yaml:"cluster"`
	Scorer    ScorerConfig    `yaml:"scorer"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DatasetConfig locates the BelgaLogos data on disk.
type DatasetConfig struct {
	Annotations     string `yaml:"annotations"`      // qset3_internal_and_local.gt path
	ImagesDir       string `yaml:"images_dir"`       // directory of dataset photographs
	ReferenceCounts string `yaml:"reference_counts"` // published per-brand counts CSV (optional)
	MinBoxDim       int    `yaml:"min_box_dim"`      // size filter: width/height must exceed this
	MaxBoxDim       int    `yaml:"max_box_dim"`      // size filter: width/height must not exceed this
}

// TemplatesConfig controls template construction.
type TemplatesConfig struct {
	Strategy TemplateStrategy `yaml:"strategy"`  // "ideal" or "live"
	Dir      string           `yaml:"dir"`       // ideal: directory with registered_logos.json
	PerBrand int              `yaml:"per_brand"` // live: crops per brand
	OKOnly   bool             `yaml:"ok_only"`   // live: restrict to OK-quality annotations
}

// ExtractorConfig mirrors feature.Config; zero values select the extractor
// defaults.
type ExtractorConfig struct {
	Octaves           int     `yaml:"octaves"`
	ScalesPerOctave   int     `yaml:"scales_per_octave"`
	Sigma             float64 `yaml:"sigma"`
	ContrastThreshold float64 `yaml:"contrast_threshold"`
	EdgeRatio         float64 `yaml:"edge_ratio"`
}

// MatcherConfig controls descriptor matching.
type MatcherConfig struct {
	MaxDistance float64 `yaml:"max_distance"` // 0 disables the distance filter
	CrossCheck  bool    `yaml:"cross_check"`
}

// ClusterConfig controls the spatial clusterer.
type ClusterConfig struct {
	Bandwidth         float64 `yaml:"bandwidth"`          // 0 estimates from data
	BandwidthQuantile float64 `yaml:"bandwidth_quantile"` // used when bandwidth is 0
	MinSupport        int     `yaml:"min_support"`
}

// ScorerConfig controls validation.
type ScorerConfig struct {
	MinOverlap float64 `yaml:"min_overlap"` // fraction of detection area, 0 = default
}

// OutputConfig controls run outputs.
type OutputConfig struct {
	Dir      string `yaml:"dir"`      // where annotated images are written
	Annotate bool   `yaml:"annotate"` // write per-image annotated copies during validation
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns the configuration used when no file is given: the
// parameter set of the feasibility study.
func Default() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Annotations: "data/qset3_internal_and_local.gt",
			ImagesDir:   "data/images",
			MinBoxDim:   10,
			MaxBoxDim:   2000,
		},
		Templates: TemplatesConfig{
			Strategy: StrategyIdeal,
			Dir:      "data/logos",
			PerBrand: 1,
			OKOnly:   true,
		},
		Matcher: MatcherConfig{
			CrossCheck: true,
		},
		Cluster: ClusterConfig{
			BandwidthQuantile: 0.02,
			MinSupport:        10,
		},
		Scorer: ScorerConfig{
			MinOverlap: 0.20,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file over the defaults, so partial files only
// override what they mention.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for contradictions that would only
// surface midway through a long batch run.
func (c *Config) Validate() error {
	switch c.Templates.Strategy {
	case StrategyIdeal, StrategyLive:
	default:
		return fmt.Errorf("unknown template strategy %q (want %q or %q)",
			c.Templates.Strategy, StrategyIdeal, StrategyLive)
	}
	if c.Templates.Strategy == StrategyIdeal && c.Templates.Dir == "" {
		return fmt.Errorf("template strategy %q requires templates.dir", StrategyIdeal)
	}
	if c.Dataset.MinBoxDim < 0 || (c.Dataset.MaxBoxDim > 0 && c.Dataset.MaxBoxDim <= c.Dataset.MinBoxDim) {
		return fmt.Errorf("invalid box size limits: min %d, max %d", c.Dataset.MinBoxDim, c.Dataset.MaxBoxDim)
	}
	if c.Scorer.MinOverlap < 0 || c.Scorer.MinOverlap > 1 {
		return fmt.Errorf("scorer min_overlap %v outside [0, 1]", c.Scorer.MinOverlap)
	}
	if c.Cluster.MinSupport < 0 {
		return fmt.Errorf("cluster min_support must not be negative")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}
