package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// BrandMismatch records a disagreement between the parsed annotation count
// for one brand and the independently published count.
type BrandMismatch struct {
	Brand     string `json:"brand"`
	Loaded    int    `json:"loaded"`
	Published int    `json:"published"`
}

// CrossCheckReport is the result of validating loaded annotations against
// the published per-brand counts from the dataset's website.
type CrossCheckReport struct {
	// Passed is true when every published brand count matches the loaded
	// count exactly.
	Passed bool `json:"passed"`

	// BrandsChecked is the number of brands with a published count.
	BrandsChecked int `json:"brands_checked"`

	// Mismatches lists the brands whose counts disagree, sorted by brand.
	Mismatches []BrandMismatch `json:"mismatches,omitempty"`
}

// LoadReferenceCounts parses a CSV of published per-brand annotation counts.
//
// The expected layout is two columns, brand name and count, with an optional
// header row. This file stands in for the counts table on the BelgaLogos
// website; scraping it is an external acquisition step outside the core.
func LoadReferenceCounts(r io.Reader) (map[string]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	counts := make(map[string]int)
	first := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read reference counts: %w", err)
		}

		brand := strings.TrimSpace(row[0])
		n, convErr := strconv.Atoi(strings.TrimSpace(row[1]))
		if convErr != nil {
			// Tolerate a single header row; anything else is malformed.
			if first {
				first = false
				continue
			}
			return nil, fmt.Errorf("bad count for %q: %w", brand, convErr)
		}
		first = false
		counts[brand] = n
	}
	return counts, nil
}

// LoadReferenceCountsFile opens and parses a reference-counts CSV from disk.
func LoadReferenceCountsFile(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference counts: %w", err)
	}
	defer f.Close()
	return LoadReferenceCounts(f)
}

// CrossCheck compares the store's per-brand record counts against published
// reference counts. Brands absent from the reference map are not checked.
//
// This is the one-time load-time sanity check for the defensively parsed
// annotation file: a failed report usually means rows were dropped that the
// published counts still include, or that the annotation file is truncated.
func CrossCheck(store *Store, reference map[string]int) *CrossCheckReport {
	report := &CrossCheckReport{Passed: true}
	loaded := store.BrandCounts()

	for brand, published := range reference {
		report.BrandsChecked++
		if loaded[brand] != published {
			report.Passed = false
			report.Mismatches = append(report.Mismatches, BrandMismatch{
				Brand:     brand,
				Loaded:    loaded[brand],
				Published: published,
			})
		}
	}
	sort.Slice(report.Mismatches, func(i, j int) bool {
		return report.Mismatches[i].Brand < report.Mismatches[j].Brand
	})
	return report
}
