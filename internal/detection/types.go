package detection

import (
	"errors"
	"fmt"

	"github.com/ironsheep/stroke-crossings/internal/raster"
)

// Default detection parameters.
const (
	// DefaultDepthLimit is the number of dequeues a search may perform before
	// its frontier is classified.
	DefaultDepthLimit = 40

	// DefaultLineWidth is the characteristic stroke thickness in pixels.
	DefaultLineWidth = 6

	// frontierRatio is the number of line widths a frontier must exceed
	// before the origin is called a crossing.
	frontierRatio = 2
)

// ErrInvalidOptions is returned when search or scan options are out of range.
var ErrInvalidOptions = errors.New("detection: invalid options")

// DepthMetric selects what the depth limit of a bounded search counts.
type DepthMetric int

const (
	// DequeueCount bounds the total number of pixels processed. The search
	// stops as soon as more than DepthLimit pixels have been dequeued.
	DequeueCount DepthMetric = iota

	// Level bounds the breadth-first distance (in 8-connected hops) from
	// the origin. The search stops when the next pixel to process lies more
	// than DepthLimit hops away.
	Level
)

// String returns the configuration name of the metric.
func (m DepthMetric) String() string {
	switch m {
	case DequeueCount:
		return "dequeue"
	case Level:
		return "level"
	default:
		return fmt.Sprintf("DepthMetric(%d)", int(m))
	}
}

// ParseDepthMetric maps a configuration name ("dequeue" or "level") to a
// DepthMetric.
func ParseDepthMetric(s string) (DepthMetric, error) {
	switch s {
	case "", "dequeue":
		return DequeueCount, nil
	case "level":
		return Level, nil
	default:
		return 0, fmt.Errorf("%w: unknown depth metric %q", ErrInvalidOptions, s)
	}
}

// OutcomeKind classifies how a bounded search ended.
type OutcomeKind int

const (
	// NotApplicable means the origin was background or already visited and
	// no traversal took place.
	NotApplicable OutcomeKind = iota

	// Exhausted means the reachable component was consumed before the depth
	// limit was reached.
	Exhausted

	// Bounded means the depth limit was reached with pixels still queued.
	Bounded
)

func (k OutcomeKind) String() string {
	switch k {
	case NotApplicable:
		return "not_applicable"
	case Exhausted:
		return "exhausted"
	case Bounded:
		return "bounded"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Frontier is the ordered set of points still queued when a search was cut
// off, in queue order.
type Frontier []raster.Point

// Outcome is the result of one bounded search.
type Outcome struct {
	Kind OutcomeKind

	// Frontier is non-nil only for Bounded outcomes.
	Frontier Frontier

	// Processed is the number of pixels dequeued before the search stopped.
	Processed int
}

// SearchOptions tunes a single bounded search.
type SearchOptions struct {
	DepthLimit int
	Metric     DepthMetric
}

// Validate checks that the options describe a runnable search.
func (o SearchOptions) Validate() error {
	if o.DepthLimit < 0 {
		return fmt.Errorf("%w: depth limit cannot be negative (%d)", ErrInvalidOptions, o.DepthLimit)
	}
	if o.Metric != DequeueCount && o.Metric != Level {
		return fmt.Errorf("%w: unknown depth metric %d", ErrInvalidOptions, int(o.Metric))
	}
	return nil
}

// Options configures an image scan.
type Options struct {
	// DepthLimit bounds each per-pixel search. See DepthMetric.
	DepthLimit int `json:"depth_limit"`

	// LineWidth is the expected stroke thickness used by the classifier.
	LineWidth int `json:"line_width"`

	// Metric selects the meaning of DepthLimit.
	Metric DepthMetric `json:"-"`

	// Workers is the number of goroutines scanning rows. 1 scans
	// sequentially.
	Workers int `json:"-"`
}

// DefaultOptions returns the stock detector parameters: depth 40, line
// width 6, dequeue-count depth and a sequential scan.
func DefaultOptions() Options {
	return Options{
		DepthLimit: DefaultDepthLimit,
		LineWidth:  DefaultLineWidth,
		Metric:     DequeueCount,
		Workers:    1,
	}
}

// Validate checks every scan parameter.
func (o Options) Validate() error {
	if err := o.search().Validate(); err != nil {
		return err
	}
	if o.LineWidth < 1 {
		return fmt.Errorf("%w: line width must be at least 1 (%d)", ErrInvalidOptions, o.LineWidth)
	}
	if o.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1 (%d)", ErrInvalidOptions, o.Workers)
	}
	return nil
}

func (o Options) search() SearchOptions {
	return SearchOptions{DepthLimit: o.DepthLimit, Metric: o.Metric}
}

// Crossing is a pixel classified as a crossing, with the size of the frontier
// that triggered the decision.
type Crossing struct {
	X            int `json:"x"`
	Y            int `json:"y"`
	FrontierSize int `json:"frontier_size"`
}
