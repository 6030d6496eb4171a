// Package imaging provides image loading and the pixel-level operations the
// detection pipeline needs: cached decoding, grayscale conversion, bounding
// box crops and brightness inversion.
//
// All operations work with standard Go image.Image types and use a
// coordinate system where (0,0) is at the top-left corner, X increases
// rightward, and Y increases downward.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The remaining operations
// are stateless and can be called concurrently on different images.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - File I/O errors during image loading
//   - Undecodable image data
//   - Crop regions outside the image bounds
package imaging
