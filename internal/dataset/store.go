package dataset

import (
	"sort"
)

// Store is a read-only index over a set of loaded annotation records.
//
// A Store is built once after loading and never mutated, so it is safe for
// concurrent readers without locking.
type Store struct {
	records []Record
	byImage map[string][]Record
	byBrand map[string][]Record
	images  []string
}

// NewStore indexes the given records. The records slice is copied; later
// mutation of the caller's slice does not affect the store.
func NewStore(records []Record) *Store {
	s := &Store{
		records: append([]Record(nil), records...),
		byImage: make(map[string][]Record),
		byBrand: make(map[string][]Record),
	}
	for _, rec := range s.records {
		if _, seen := s.byImage[rec.ImageFile]; !seen {
			s.images = append(s.images, rec.ImageFile)
		}
		s.byImage[rec.ImageFile] = append(s.byImage[rec.ImageFile], rec)
		s.byBrand[rec.Brand] = append(s.byBrand[rec.Brand], rec)
	}
	sort.Strings(s.images)
	return s
}

// Len returns the total number of records in the store.
func (s *Store) Len() int { return len(s.records) }

// Records returns all records. The returned slice must not be modified.
func (s *Store) Records() []Record { return s.records }

// ByImage returns the annotations for one image file, or nil if the image
// has none.
func (s *Store) ByImage(imageFile string) []Record { return s.byImage[imageFile] }

// ByBrand returns the annotations for one brand, or nil if the brand has
// none.
func (s *Store) ByBrand(brand string) []Record { return s.byBrand[brand] }

// Images returns the sorted list of unique annotated image files.
func (s *Store) Images() []string { return s.images }

// BrandCounts returns the number of records per brand.
func (s *Store) BrandCounts() map[string]int {
	counts := make(map[string]int, len(s.byBrand))
	for brand, recs := range s.byBrand {
		counts[brand] = len(recs)
	}
	return counts
}
