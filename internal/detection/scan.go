package detection

import (
	"context"
	"image"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/stroke-crossings/internal/raster"
)

// Scanner probes every pixel of a binary image with a bounded search and
// counts the pixels classified as crossings.
//
// The scan is exhaustive: each origin gets a freshly reset visited tracker
// and an independent search, even when many origins belong to the same
// connected stroke. No classification is memoised across origins, so the cost
// is O(pixels × min(component size, depth limit)).
//
// A Scanner is immutable and safe for concurrent use.
type Scanner struct {
	opts Options
}

// NewScanner validates opts and returns a Scanner using them.
func NewScanner(opts Options) (*Scanner, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Scanner{opts: opts}, nil
}

// Options returns the scanner's configuration.
func (s *Scanner) Options() Options { return s.opts }

// CountCrossings scans img with the given depth limit and line width using
// the default dequeue-count metric. It panics if depthLimit is negative or
// lineWidth is less than 1.
func CountCrossings(img *raster.BinaryImage, depthLimit, lineWidth int) int {
	opts := DefaultOptions()
	opts.DepthLimit = depthLimit
	opts.LineWidth = lineWidth

	s, err := NewScanner(opts)
	if err != nil {
		panic(err)
	}
	return s.Count(img)
}

// Count returns the number of crossing pixels in img.
func (s *Scanner) Count(img *raster.BinaryImage) int {
	// scan only fails on context cancellation, which a background context
	// never reports.
	n, _ := s.CountContext(context.Background(), img)
	return n
}

// CountContext is Count with cancellation. The context is checked between
// rows; on cancellation the partial count is discarded and ctx.Err() is
// returned.
func (s *Scanner) CountContext(ctx context.Context, img *raster.BinaryImage) (int, error) {
	rows, err := s.scan(ctx, img, false)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, r := range rows {
		total += r.count
	}
	return total, nil
}

// Find returns every crossing pixel in row-major order.
func (s *Scanner) Find(ctx context.Context, img *raster.BinaryImage) ([]Crossing, error) {
	rows, err := s.scan(ctx, img, true)
	if err != nil {
		return nil, err
	}
	var out []Crossing
	for _, r := range rows {
		out = append(out, r.crossings...)
	}
	return out, nil
}

type rowResult struct {
	count     int
	crossings []Crossing
}

// scan fills one rowResult per image row. Rows are interleaved across
// workers; each worker owns its own searcher and visited tracker.
func (s *Scanner) scan(ctx context.Context, img *raster.BinaryImage, collect bool) ([]rowResult, error) {
	height := img.Height()
	rows := make([]rowResult, height)
	workers := min(s.opts.Workers, max(height, 1))

	work := func(ctx context.Context, first int) error {
		srch := newSearcher(img, raster.NewVisitedTracker(img.Width(), height), s.opts.search())
		for y := first; y < height; y += workers {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows[y] = s.scanRow(srch, y, collect)
		}
		return nil
	}

	if workers == 1 {
		if err := work(ctx, 0); err != nil {
			return nil, err
		}
		return rows, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		first := w
		g.Go(func() error { return work(gctx, first) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Scanner) scanRow(srch *searcher, y int, collect bool) rowResult {
	var r rowResult
	for x := 0; x < srch.img.Width(); x++ {
		srch.visited.Reset()
		o := srch.run(image.Point{X: x, Y: y})
		if !Classify(o, s.opts.LineWidth) {
			continue
		}
		r.count++
		if collect {
			r.crossings = append(r.crossings, Crossing{X: x, Y: y, FrontierSize: len(o.Frontier)})
		}
	}
	return r
}
