// Package imaging turns image files into the grayscale grids the crossing
// detector works on, and renders detection results back onto images.
//
// It wraps github.com/disintegration/imaging for decoding, orientation,
// cropping and saving, and github.com/anthonynsimon/bild for optional white
// level thresholding. All operations work with standard Go image.Image types
// and use a coordinate system where (0,0) is at the top-left corner, X
// increases rightward, and Y increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// Grids returned by LoadGray, ToGray and Crop always have their origin at
// (0,0), whatever the bounds of the source image.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The remaining functions are
// stateless and never modify their input image.
//
// # Error Handling
//
// Every open or decode failure wraps ErrImageLoad, so callers can separate a
// bad input file from other failures with errors.Is. Invalid regions, marker
// colours and encoding failures are returned as plain errors.
//
// # Performance Considerations
//
// For repeated operations on the same image, use ImageCache to avoid redundant
// disk reads. Large images may consume significant memory when cached.
// Consider using Evict() or Clear() to manage memory for long-running processes.
package imaging
