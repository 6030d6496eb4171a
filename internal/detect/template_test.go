package detect

import (
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"logospot/internal/dataset"
	"logospot/internal/feature"
	"logospot/internal/geom"
	"logospot/internal/imaging"
)

func writeJPEG(t *testing.T, path string, width, height int, seed int64) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, createTexture(width, height, 8, seed), &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
}

func writePNG(t *testing.T, path string, width, height int, seed int64) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, createTexture(width, height, 8, seed)); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
}

func TestLoadIdealTemplates(t *testing.T) {
	dir := t.TempDir()
	registry := `["Adidas", "Nike"]`
	if err := os.WriteFile(filepath.Join(dir, RegistryFile), []byte(registry), 0644); err != nil {
		t.Fatal(err)
	}
	writeJPEG(t, filepath.Join(dir, "adidas.jpg"), 64, 64, 1)
	writeJPEG(t, filepath.Join(dir, "nike.jpg"), 64, 64, 2)

	d := New(feature.NewExtractor(feature.Config{}), testConfig())
	n, err := LoadIdealTemplates(d, dir)
	if err != nil {
		t.Fatalf("LoadIdealTemplates failed: %v", err)
	}
	if n != 2 {
		t.Errorf("registered %d brands, want 2", n)
	}
	if len(d.Templates()) != 4 {
		t.Errorf("got %d templates, want 4 (two variants per brand)", len(d.Templates()))
	}

	sawInverted := false
	for _, tmpl := range d.Templates() {
		if tmpl.Source != SourceIdeal {
			t.Errorf("template source = %q, want %q", tmpl.Source, SourceIdeal)
		}
		if tmpl.Inverted {
			sawInverted = true
		}
	}
	if !sawInverted {
		t.Error("no inverted template variant registered")
	}
}

func TestLoadIdealTemplates_MissingRegistry(t *testing.T) {
	d := New(feature.NewExtractor(feature.Config{}), testConfig())
	if _, err := LoadIdealTemplates(d, t.TempDir()); err == nil {
		t.Error("expected an error for a directory without a registry")
	}
}

func TestLoadIdealTemplates_MissingImage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, RegistryFile), []byte(`["Ghost"]`), 0644); err != nil {
		t.Fatal(err)
	}

	d := New(feature.NewExtractor(feature.Config{}), testConfig())
	if _, err := LoadIdealTemplates(d, dir); err == nil {
		t.Error("expected an error for a registered brand without an image")
	}
}

func TestLoadIdealTemplates_BadRegistry(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, RegistryFile), []byte(`{not json`), 0644); err != nil {
		t.Fatal(err)
	}

	d := New(feature.NewExtractor(feature.Config{}), testConfig())
	if _, err := LoadIdealTemplates(d, dir); err == nil {
		t.Error("expected an error for an unparseable registry")
	}
}

func TestLoadLiveTemplates(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "photo1.png"), 200, 200, 5)
	writePNG(t, filepath.Join(dir, "photo2.png"), 200, 200, 6)

	records := []dataset.Record{
		{Brand: "adidas", ImageFile: "photo1.png", Quality: dataset.QualityOK,
			Box: geom.Box{X1: 20, Y1: 20, X2: 120, Y2: 120}},
		{Brand: "adidas", ImageFile: "photo2.png", Quality: dataset.QualityJunk,
			Box: geom.Box{X1: 20, Y1: 20, X2: 120, Y2: 120}},
		{Brand: "nike", ImageFile: "missing.png", Quality: dataset.QualityOK,
			Box: geom.Box{X1: 0, Y1: 0, X2: 50, Y2: 50}},
		{Brand: "nike", ImageFile: "photo2.png", Quality: dataset.QualityOK,
			Box: geom.Box{X1: 40, Y1: 40, X2: 160, Y2: 160}},
	}
	store := dataset.NewStore(records)

	d := New(feature.NewExtractor(feature.Config{}), testConfig())
	cache := imaging.NewImageCache()
	added, err := LoadLiveTemplates(d, store, dir, cache, LiveTemplateConfig{PerBrand: 1, OKOnly: true})
	if err != nil {
		t.Fatalf("LoadLiveTemplates failed: %v", err)
	}
	// adidas takes its OK crop from photo1; nike skips the missing file and
	// falls through to photo2.
	if added != 2 {
		t.Errorf("registered %d crops, want 2", added)
	}
	if len(d.Templates()) != 4 {
		t.Errorf("got %d templates, want 4", len(d.Templates()))
	}
	for _, tmpl := range d.Templates() {
		if tmpl.Source != SourceLive {
			t.Errorf("template source = %q, want %q", tmpl.Source, SourceLive)
		}
	}
}

func TestLoadLiveTemplates_NothingUsable(t *testing.T) {
	store := dataset.NewStore([]dataset.Record{
		{Brand: "nike", ImageFile: "missing.png", Quality: dataset.QualityOK,
			Box: geom.Box{X1: 0, Y1: 0, X2: 50, Y2: 50}},
	})

	d := New(feature.NewExtractor(feature.Config{}), testConfig())
	if _, err := LoadLiveTemplates(d, store, t.TempDir(), imaging.NewImageCache(), LiveTemplateConfig{}); err == nil {
		t.Error("expected an error when no crop is usable")
	}
}

func TestNewTemplatePair(t *testing.T) {
	ex := feature.NewExtractor(feature.Config{})
	pair := newTemplatePair("puma", createTexture(64, 64, 8, 9), SourceIdeal, ex)

	if pair[0].Inverted || !pair[1].Inverted {
		t.Error("pair must hold the normal variant first, inverted second")
	}
	if pair[0].Brand != "puma" || pair[1].Brand != "puma" {
		t.Error("both variants must carry the brand label")
	}
	if len(pair[0].Keypoints) == 0 || len(pair[1].Keypoints) == 0 {
		t.Error("textured template must yield keypoints in both variants")
	}
}
