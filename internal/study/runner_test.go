package study

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"logospot/internal/config"
	"logospot/internal/geom"
	"logospot/internal/render"
)

// createTexture builds a deterministic block pattern dense in corner-like
// features, standing in for a logo in the synthetic scenes below.
func createTexture(width, height, blockSize int, seed int64) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	cols := (width + blockSize - 1) / blockSize
	rows := (height + blockSize - 1) / blockSize
	values := make([]uint8, cols*rows)
	for i := range values {
		values[i] = uint8(rng.Intn(256))
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := values[(y/blockSize)*cols+x/blockSize]
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

func writeTestPNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// buildScene writes a two-logo scene image plus its annotation file into a
// temp directory and returns the ready-to-use run configuration.
func buildScene(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	imagesDir := filepath.Join(dir, "images")
	if err := os.MkdirAll(imagesDir, 0755); err != nil {
		t.Fatal(err)
	}

	logos := []image.Image{
		createTexture(128, 128, 8, 1),
		createTexture(128, 128, 8, 2),
	}
	scene := render.Collage(logos, 2)
	writeTestPNG(t, filepath.Join(imagesDir, "scene.png"), scene)

	adidasBox := render.CollageCell(logos, 2, 0)
	nikeBox := render.CollageCell(logos, 2, 1)

	row := func(brand string, b geom.Box) string {
		return fmt.Sprintf("%s\tscene.png\t1\tok\t%d\t%d\t%d\t%d\n", brand, b.X1, b.Y1, b.X2, b.Y2)
	}
	annotations := row("Adidas", adidasBox) + row("Nike", nikeBox)
	annotationsPath := filepath.Join(dir, "annotations.gt")
	if err := os.WriteFile(annotationsPath, []byte(annotations), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Dataset.Annotations = annotationsPath
	cfg.Dataset.ImagesDir = imagesDir
	cfg.Templates.Strategy = config.StrategyLive
	cfg.Templates.PerBrand = 1
	cfg.Templates.OKOnly = true
	cfg.Matcher.MaxDistance = 0.3
	cfg.Matcher.CrossCheck = true
	cfg.Cluster.Bandwidth = 60
	cfg.Cluster.MinSupport = 10
	return cfg
}

func TestRunner_EndToEnd(t *testing.T) {
	cfg := buildScene(t)

	r, err := NewRunner(cfg, discardLogger())
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	if got := r.Store().Len(); got != 2 {
		t.Fatalf("store holds %d records, want 2", got)
	}
	// One live crop per brand, each with a normal and an inverted variant.
	if got := len(r.Detector().Templates()); got != 4 {
		t.Fatalf("detector holds %d templates, want 4", got)
	}

	report, err := r.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Images != 1 || report.Skipped != 0 {
		t.Errorf("scored %d images (%d skipped), want 1 (0 skipped)", report.Images, report.Skipped)
	}
	for _, brand := range []string{"Adidas", "Nike"} {
		o := report.PerBrand[brand]
		if o.GroundTruth != 1 {
			t.Errorf("%s ground truth = %d, want 1", brand, o.GroundTruth)
		}
		if o.TruePositives != 1 {
			t.Errorf("%s true positives = %d, want 1", brand, o.TruePositives)
		}
		if o.FalsePositives != 0 {
			t.Errorf("%s false positives = %d, want 0", brand, o.FalsePositives)
		}
	}
	if ratio := report.TruePositiveRatio(); ratio != 1.0 {
		t.Errorf("true positive ratio = %f, want 1.0", ratio)
	}
	if fp := report.FalsePositivesPerImage(); fp != 0 {
		t.Errorf("false positives per image = %f, want 0", fp)
	}
}

func TestRunner_AnnotatedOutput(t *testing.T) {
	cfg := buildScene(t)
	cfg.Output.Dir = filepath.Join(t.TempDir(), "out")
	cfg.Output.Annotate = true

	r, err := NewRunner(cfg, discardLogger())
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	if _, err := r.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	annotated := filepath.Join(cfg.Output.Dir, "annotated_scene.png.png")
	if _, err := os.Stat(annotated); err != nil {
		t.Errorf("annotated image not written: %v", err)
	}
}

func TestRunner_SkipsMissingImages(t *testing.T) {
	cfg := buildScene(t)

	// An annotation pointing at a photograph that was never delivered; the
	// batch must log it, count it and carry on.
	f, err := os.OpenFile(cfg.Dataset.Annotations, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("Puma\tghost.png\t1\tok\t10\t10\t120\t120\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	r, err := NewRunner(cfg, discardLogger())
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	report, err := r.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Skipped != 1 || report.Images != 1 {
		t.Errorf("got %d images / %d skipped, want 1 / 1", report.Images, report.Skipped)
	}
}

func TestRunner_MissingAnnotations(t *testing.T) {
	cfg := config.Default()
	cfg.Dataset.Annotations = filepath.Join(t.TempDir(), "nope.gt")
	if _, err := NewRunner(cfg, discardLogger()); err == nil {
		t.Error("expected an error for a missing annotation file")
	}
}

func TestRunner_DetectFile(t *testing.T) {
	cfg := buildScene(t)

	r, err := NewRunner(cfg, discardLogger())
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	detections, annotated, err := r.DetectFile(filepath.Join(cfg.Dataset.ImagesDir, "scene.png"))
	if err != nil {
		t.Fatalf("DetectFile failed: %v", err)
	}
	if len(detections) == 0 {
		t.Fatal("no detections on the synthetic scene")
	}
	if annotated == nil {
		t.Fatal("no annotated image returned")
	}
	if annotated.Bounds().Dx() != 256 || annotated.Bounds().Dy() != 128 {
		t.Errorf("annotated image bounds = %v, want 256x128", annotated.Bounds())
	}
}
