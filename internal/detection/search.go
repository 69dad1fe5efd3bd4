package detection

import (
	"fmt"
	"image"

	"github.com/ironsheep/stroke-crossings/internal/raster"
)

// mooreOffsets lists the 8-connected neighbourhood as (dx, dy) pairs,
// diagonals first. The order only affects tie order among siblings at the
// same depth, never which pixels are discovered.
var mooreOffsets = [8][2]int{
	{-1, -1}, {1, 1}, {1, -1}, {-1, 1},
	{0, -1}, {0, 1}, {-1, 0}, {1, 0},
}

// queueItem pairs a point with its breadth-first distance from the origin.
type queueItem struct {
	pt    raster.Point
	level int
}

// searcher holds the mutable state of a bounded search. The queue buffer is
// reused across searches so a full-image scan does not allocate per pixel.
type searcher struct {
	img     *raster.BinaryImage
	visited *raster.VisitedTracker
	opts    SearchOptions
	queue   []queueItem
	head    int
}

func newSearcher(img *raster.BinaryImage, visited *raster.VisitedTracker, opts SearchOptions) *searcher {
	if visited.Width() != img.Width() || visited.Height() != img.Height() {
		panic(fmt.Sprintf("detection: visited tracker is %dx%d, image is %dx%d",
			visited.Width(), visited.Height(), img.Width(), img.Height()))
	}
	return &searcher{
		img:     img,
		visited: visited,
		opts:    opts,
		queue:   make([]queueItem, 0, 64),
	}
}

// Search runs a bounded 8-connected breadth-first search from origin.
//
// Parameters:
//   - img: The binary mask to explore.
//   - visited: Tracker with the same dimensions as img. Search marks every
//     pixel it enqueues and does not reset the tracker; callers that probe
//     independent origins must call Reset between searches.
//   - origin: Starting pixel. Must lie inside img.
//   - opts: Depth limit and metric. Invalid options panic; validate them
//     with SearchOptions.Validate first when they come from user input.
//
// Returns an Outcome:
//   - NotApplicable if the origin is background or already marked.
//   - Exhausted if the queue empties before the cutoff.
//   - Bounded with the queued points if the cutoff is reached first.
//
// # Depth Metric
//
// With DequeueCount (the default) the search stops once more than
// DepthLimit pixels have been dequeued while the queue is still non-empty.
// This counts processed pixels, not hops: on a branching component the
// cutoff arrives at a smaller radius than on a simple stroke.
//
// With Level the search stops when the pixel at the head of the queue is more
// than DepthLimit hops from the origin. Because the traversal is
// breadth-first, the frontier then holds exactly the discovered pixels at
// distance DepthLimit+1.
func Search(img *raster.BinaryImage, visited *raster.VisitedTracker, origin image.Point, opts SearchOptions) Outcome {
	if err := opts.Validate(); err != nil {
		panic(err)
	}
	return newSearcher(img, visited, opts).run(origin)
}

func (s *searcher) run(origin image.Point) Outcome {
	if !s.img.Foreground(origin.X, origin.Y) || s.visited.Marked(origin.X, origin.Y) {
		return Outcome{Kind: NotApplicable}
	}

	s.queue = s.queue[:0]
	s.head = 0
	s.enqueue(origin.X, origin.Y, 0)

	processed := 0
	for s.head < len(s.queue) {
		item := s.queue[s.head]
		if s.cutoff(processed, item) {
			return Outcome{
				Kind:      Bounded,
				Frontier:  s.frontier(),
				Processed: processed,
			}
		}
		s.head++
		s.expand(item)
		processed++
	}

	return Outcome{Kind: Exhausted, Processed: processed}
}

func (s *searcher) cutoff(processed int, next queueItem) bool {
	if s.opts.Metric == Level {
		return next.level > s.opts.DepthLimit
	}
	return processed > s.opts.DepthLimit
}

// expand enqueues every in-bounds, foreground, unmarked neighbour of item.
func (s *searcher) expand(item queueItem) {
	for _, d := range mooreOffsets {
		nx, ny := item.pt.X+d[0], item.pt.Y+d[1]
		if !s.img.InBounds(nx, ny) {
			continue
		}
		if s.visited.Marked(nx, ny) || !s.img.Foreground(nx, ny) {
			continue
		}
		s.enqueue(nx, ny, item.level+1)
	}
}

func (s *searcher) enqueue(x, y, level int) {
	s.visited.Mark(x, y)
	s.queue = append(s.queue, queueItem{
		pt:    raster.Point{X: x, Y: y, Foreground: true},
		level: level,
	})
}

// frontier copies the still-queued points out of the reusable buffer.
func (s *searcher) frontier() Frontier {
	pending := s.queue[s.head:]
	f := make(Frontier, len(pending))
	for i, item := range pending {
		f[i] = item.pt
	}
	return f
}
