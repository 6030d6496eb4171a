package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"logospot/internal/geom"
)

// Quality is the annotation quality flag carried by each ground-truth row.
type Quality string

const (
	// QualityOK marks a clean, usable annotation.
	QualityOK Quality = "ok"

	// QualityJunk marks a degraded annotation (occluded, blurred or
	// otherwise flagged by the dataset authors). Junk rows are kept in the
	// store so callers can decide whether to include them.
	QualityJunk Quality = "junk"
)

// Record is one ground-truth logo annotation: a brand bounding box inside a
// dataset photograph. Records are immutable once loaded.
type Record struct {
	Brand     string   `json:"brand"`
	Category  Category `json:"category"`
	ImageFile string   `json:"image_file"`
	Kind      string   `json:"kind"` // Annotation type column (e.g. "internal", "local")
	Quality   Quality  `json:"quality"`
	Box       geom.Box `json:"box"`
}

// LoadReport summarises a load: how many rows parsed cleanly and how many
// were dropped, broken down by reason. Dropped rows are expected with the
// raw BelgaLogos file and are reported rather than treated as errors.
type LoadReport struct {
	Parsed      int            `json:"parsed"`
	Dropped     int            `json:"dropped"`
	DropReasons map[string]int `json:"drop_reasons,omitempty"`
}

func (r *LoadReport) drop(reason string) {
	if r.DropReasons == nil {
		r.DropReasons = make(map[string]int)
	}
	r.Dropped++
	r.DropReasons[reason]++
}

// expected column layout of qset3_internal_and_local.gt
const annotationFields = 8

// Load parses BelgaLogos annotation rows from r.
//
// Each row is expected to be tab-separated with eight fields:
// brand, image file, type, quality flag, bbx1, bby1, bbx2, bby2.
// Rows with the wrong field count, non-integer coordinates, inverted or
// empty geometry, or an unknown brand name are dropped and counted in the
// returned LoadReport. Only read failures produce an error.
func Load(r io.Reader) ([]Record, *LoadReport, error) {
	report := &LoadReport{}
	records := make([]Record, 0, 1024)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		rec, reason := parseRow(line)
		if reason != "" {
			report.drop(reason)
			continue
		}
		records = append(records, rec)
		report.Parsed++
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read annotations: %w", err)
	}

	return records, report, nil
}

// LoadFile opens and parses an annotation file from disk.
func LoadFile(path string) ([]Record, *LoadReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open annotations: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// parseRow parses one annotation line. It returns the record and an empty
// reason on success, or a zero record and a drop reason on failure.
func parseRow(line string) (Record, string) {
	fields := strings.Split(line, "\t")
	if len(fields) != annotationFields {
		return Record{}, "wrong field count"
	}

	brand := strings.TrimSpace(fields[0])
	if !KnownBrand(brand) {
		return Record{}, "unknown brand"
	}

	imageFile := strings.TrimSpace(fields[1])
	if imageFile == "" {
		return Record{}, "missing image file"
	}

	coords := make([]int, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(fields[4+i]))
		if err != nil {
			return Record{}, "bad coordinate"
		}
		coords[i] = v
	}
	box := geom.Box{X1: coords[0], Y1: coords[1], X2: coords[2], Y2: coords[3]}
	if box.X1 < 0 || box.Y1 < 0 || box.X2 <= box.X1 || box.Y2 <= box.Y1 {
		return Record{}, "bad geometry"
	}

	return Record{
		Brand:     brand,
		Category:  BrandCategory(brand),
		ImageFile: imageFile,
		Kind:      strings.TrimSpace(fields[2]),
		Quality:   parseQuality(fields[3]),
		Box:       box,
	}, ""
}

// parseQuality interprets the quality-flag column. The raw file is not
// consistent about how the flag is spelled, so several spellings are
// accepted. Anything unrecognised is treated as junk rather than dropped.
func parseQuality(field string) Quality {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "ok", "true", "1", "yes":
		return QualityOK
	default:
		return QualityJunk
	}
}

// FilterBySize keeps only records whose box dimensions satisfy
//
//	minDim < width  <= maxDim
//	minDim < height <= maxDim
//
// matching the dataset-documented size limits. The returned slice shares no
// backing storage with the input.
func FilterBySize(records []Record, minDim, maxDim int) []Record {
	kept := make([]Record, 0, len(records))
	for _, rec := range records {
		w, h := rec.Box.Width(), rec.Box.Height()
		if w > minDim && w <= maxDim && h > minDim && h <= maxDim {
			kept = append(kept, rec)
		}
	}
	return kept
}
