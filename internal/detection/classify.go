package detection

import "fmt"

// Classify decides whether a search outcome marks a crossing.
//
// Only Bounded outcomes can be crossings: the frontier size is divided by
// lineWidth (integer division) and the origin is a crossing when the quotient
// exceeds 2. A single unbranched stroke leaves roughly one line width of
// pixels queued at any cutoff, so more than two line widths suggests several
// branches meet near the origin. Because the division truncates, the test
// holds exactly when len(frontier) >= 3*lineWidth.
//
// Classify panics if lineWidth is less than 1.
func Classify(o Outcome, lineWidth int) bool {
	if lineWidth < 1 {
		panic(fmt.Errorf("%w: line width must be at least 1 (%d)", ErrInvalidOptions, lineWidth))
	}
	if o.Kind != Bounded {
		return false
	}
	return len(o.Frontier)/lineWidth > frontierRatio
}
