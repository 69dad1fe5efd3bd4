package raster

// VisitedTracker records which cells a single bounded search has already
// enqueued.
//
// Instead of clearing a boolean grid before every search, each cell stores the
// generation in which it was last marked. Reset advances the generation, so a
// reset costs O(1) and every cell reads as unmarked afterwards. When the
// generation counter wraps around the stamps are cleared in full, since a stale
// stamp could otherwise collide with the restarted counter.
//
// A VisitedTracker is not safe for concurrent use; give each goroutine its own.
type VisitedTracker struct {
	width, height int
	stamps        []uint32
	generation    uint32
}

// NewVisitedTracker returns a tracker for a width × height grid with every
// cell unmarked.
func NewVisitedTracker(width, height int) *VisitedTracker {
	return &VisitedTracker{
		width:      width,
		height:     height,
		stamps:     make([]uint32, width*height),
		generation: 1,
	}
}

// Width returns the number of columns tracked.
func (v *VisitedTracker) Width() int { return v.width }

// Height returns the number of rows tracked.
func (v *VisitedTracker) Height() int { return v.height }

// Marked reports whether (x, y) was marked since the last Reset.
func (v *VisitedTracker) Marked(x, y int) bool {
	return v.stamps[v.index(x, y)] == v.generation
}

// Mark flags (x, y) as enqueued for the current search.
func (v *VisitedTracker) Mark(x, y int) {
	v.stamps[v.index(x, y)] = v.generation
}

// Reset unmarks every cell ahead of a new search.
func (v *VisitedTracker) Reset() {
	v.generation++
	if v.generation == 0 {
		clear(v.stamps)
		v.generation = 1
	}
}

func (v *VisitedTracker) index(x, y int) int {
	if x < 0 || x >= v.width || y < 0 || y >= v.height {
		panic("raster: visited tracker access out of range")
	}
	return y*v.width + x
}
