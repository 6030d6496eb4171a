package main

import (
	"flag"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"

	"logospot/internal/config"
	"logospot/internal/dataset"
	"logospot/internal/study"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("logospot - keypoint-matching logo detection for BelgaLogos")
	fmt.Println()
	fmt.Println("Usage: logospot [-config file.yaml] <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  detect <image>...   Detect logos in images; writes annotated_<name>.png copies")
	fmt.Println("  validate            Score the detector over every annotated dataset image")
	fmt.Println("  check               Load annotations, apply the size filter, cross-check counts")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -config file.yaml   Run configuration (defaults used when omitted)")
	fmt.Println("  --version, -v       Print version information")
	fmt.Println("  --help, -h          Print this help message")
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("logospot %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage()
			return
		}
	}

	configPath := flag.String("config", "", "path to YAML run configuration")
	flag.Usage = usage
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logospot: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// Results go to stdout; logging goes to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.Logging.Level),
	}))

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "detect":
		err = runDetect(cfg, log, args[1:])
	case "validate":
		err = runValidate(cfg, log)
	case "check":
		err = runCheck(cfg, log)
	default:
		fmt.Fprintf(os.Stderr, "logospot: unknown command %q\n", args[0])
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// runDetect annotates one or more images with the detector's output.
func runDetect(cfg *config.Config, log *slog.Logger, images []string) error {
	if len(images) == 0 {
		return fmt.Errorf("detect: no input images given")
	}

	runner, err := study.NewRunner(cfg, log)
	if err != nil {
		return err
	}

	for _, path := range images {
		detections, annotated, err := runner.DetectFile(path)
		if err != nil {
			log.Warn("skipping image", "image", path, "error", err)
			continue
		}
		for _, det := range detections {
			fmt.Printf("%s: %s at (%d,%d)-(%d,%d) confidence %.2f (%d matches)\n",
				filepath.Base(path), det.Brand,
				det.Box.X1, det.Box.Y1, det.Box.X2, det.Box.Y2,
				det.Confidence, det.Support)
		}

		outPath := "annotated_" + filepath.Base(path) + ".png"
		if cfg.Output.Dir != "" {
			if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			outPath = filepath.Join(cfg.Output.Dir, outPath)
		}
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", outPath, err)
		}
		if err := png.Encode(f, annotated); err != nil {
			f.Close()
			return fmt.Errorf("failed to encode %s: %w", outPath, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		log.Info("exported annotated image", "path", outPath, "detections", len(detections))
	}
	return nil
}

// runValidate scores the detector over the annotated dataset and prints a
// per-brand summary table.
func runValidate(cfg *config.Config, log *slog.Logger) error {
	runner, err := study.NewRunner(cfg, log)
	if err != nil {
		return err
	}

	report, err := runner.Run()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BRAND\tTRUE POS\tFALSE POS\tGROUND TRUTH")
	for _, brand := range report.Brands() {
		o := report.PerBrand[brand]
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", brand, o.TruePositives, o.FalsePositives, o.GroundTruth)
	}
	totals := report.Totals()
	fmt.Fprintf(w, "TOTAL\t%d\t%d\t%d\n", totals.TruePositives, totals.FalsePositives, totals.GroundTruth)
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nimages: %d (skipped %d)  true positive ratio: %.3f  false positives/image: %.2f\n",
		report.Images, report.Skipped, report.TruePositiveRatio(), report.FalsePositivesPerImage())
	return nil
}

// runCheck loads and validates the annotation file without running the
// detector: parse report, size filter effect, and the published-count
// cross-check when a reference file is configured.
func runCheck(cfg *config.Config, log *slog.Logger) error {
	records, report, err := dataset.LoadFile(cfg.Dataset.Annotations)
	if err != nil {
		return err
	}
	fmt.Printf("parsed %d rows, dropped %d\n", report.Parsed, report.Dropped)
	for reason, n := range report.DropReasons {
		fmt.Printf("  dropped %d: %s\n", n, reason)
	}

	if cfg.Dataset.MaxBoxDim > 0 {
		filtered := dataset.FilterBySize(records, cfg.Dataset.MinBoxDim, cfg.Dataset.MaxBoxDim)
		fmt.Printf("size filter (%d < dim <= %d): kept %d of %d\n",
			cfg.Dataset.MinBoxDim, cfg.Dataset.MaxBoxDim, len(filtered), len(records))
		records = filtered
	}

	store := dataset.NewStore(records)
	fmt.Printf("images: %d, brands: %d\n", len(store.Images()), len(store.BrandCounts()))

	if cfg.Dataset.ReferenceCounts == "" {
		log.Info("no reference counts configured; skipping cross-check")
		return nil
	}
	reference, err := dataset.LoadReferenceCountsFile(cfg.Dataset.ReferenceCounts)
	if err != nil {
		return err
	}
	check := dataset.CrossCheck(store, reference)
	if check.Passed {
		fmt.Printf("cross-check PASSED (%d brands)\n", check.BrandsChecked)
		return nil
	}
	fmt.Printf("cross-check FAILED (%d of %d brands mismatch)\n", len(check.Mismatches), check.BrandsChecked)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BRAND\tLOADED\tPUBLISHED")
	for _, m := range check.Mismatches {
		fmt.Fprintf(w, "%s\t%d\t%d\n", m.Brand, m.Loaded, m.Published)
	}
	return w.Flush()
}
