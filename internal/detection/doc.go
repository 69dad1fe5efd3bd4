// Package detection finds candidate crossing points in binary stroke images.
//
// This package implements a coarse junction heuristic for thin curves such as
// handwriting or wiring diagrams. It is designed for clean, already binarized
// raster input where strokes have a roughly known thickness.
//
// # Algorithm Overview
//
// Every pixel of the image is probed independently:
//
//  1. Bounded Search: From the pixel, run an 8-connected breadth-first search
//     over ink pixels and stop once the depth limit is exceeded.
//  2. Frontier Capture: Whatever is still queued at the cutoff is the
//     frontier. If the component runs out first, the pixel is not a candidate.
//  3. Classification: Divide the frontier size by the line width (integer
//     division). A quotient above 2 means more stroke branches are still
//     active than a single stroke would leave, so the pixel is counted.
//  4. Accumulation: The scanner sums the positive decisions over the grid.
//
// # Depth Limit
//
// The default metric counts dequeued pixels, not hops from the origin; see
// DepthMetric. Level switches to true breadth-first distance.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// # Performance Considerations
//
// Each scan is O(pixels × min(component size, depth limit)). Visited state is
// reset with a generation counter, so resets are O(1). For large images, set
// Options.Workers to scan rows in parallel; the result does not depend on the
// worker count.
//
// # Limitations
//
// This is a single heuristic, not a line-intersection detector:
//   - No line fitting or colinearity check of the frontier
//   - Stroke endpoints near a junction may be counted like true crossings
//   - A single junction usually yields a cluster of positive pixels, not one
//   - No sub-pixel or multi-scale analysis
package detection
