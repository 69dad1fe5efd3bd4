// Package raster holds the binary pixel model used by the crossing detector.
//
// A BinaryImage is an immutable foreground/background mask derived from an
// 8-bit grayscale grid: a sample of exactly 255 (white paper) is background and
// every other value is ink. A VisitedTracker is the per-search "already
// enqueued" state that the bounded neighbourhood search in package detection
// uses to avoid revisiting pixels.
//
// # Coordinate System
//
// Coordinates follow the image package convention:
//   - X: column (0 = leftmost)
//   - Y: row (0 = topmost)
//
// All accessors are valid only for 0 <= x < Width and 0 <= y < Height. Callers
// must guard neighbour lookups with InBounds; an out-of-range access is a
// programming error and panics.
package raster
