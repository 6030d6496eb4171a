// Package dataset loads and indexes the BelgaLogos ground-truth annotations.
//
// The BelgaLogos annotation file (qset3_internal_and_local.gt) is a
// tab-separated list of logo bounding boxes over the dataset's press
// photographs. Each row carries a brand name, an image file name, an
// annotation type, a quality flag, and the four corners of an axis-aligned
// bounding box:
//
//	brand<TAB>image_file<TAB>type<TAB>ok<TAB>bbx1<TAB>bby1<TAB>bbx2<TAB>bby2
//
// The raw file has known formatting irregularities, so parsing is defensive:
// malformed rows are dropped and counted rather than aborting the load. The
// resulting records are immutable for the session and served through a
// read-only Store.
//
// # Validation
//
// Two explicit validation steps are available after loading:
//
//   - FilterBySize removes boxes outside the dataset-documented dimension
//     limits.
//   - CrossCheck compares per-brand record counts against the independently
//     published counts from the dataset's website, producing a pass/fail
//     report. This is a one-time load-time sanity check, not a hidden global.
//
// # Error Handling
//
// Only I/O failures (missing or unreadable annotation file) are returned as
// errors. Bad rows are reported through LoadReport, never as errors.
package dataset
