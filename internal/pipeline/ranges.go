package pipeline

import (
	"context"
	"fmt"

	"github.com/retroenv/retrolift/internal/arch"
	"github.com/retroenv/retrolift/internal/image"
	"github.com/retroenv/retrolift/internal/options"
	"golang.org/x/sync/errgroup"
)

// LiftRanges lifts independent ranges of the image in parallel, each range in
// its own session. The results are returned in the order of the ranges.
// The first failing range cancels the others.
func LiftRanges(ctx context.Context, mode arch.Mode, mem *image.Memory, host arch.Host,
	opts options.Lifter) ([][]Lifted, error) {

	ranges := opts.Ranges
	if len(ranges) == 0 {
		ranges = []options.Range{{}}
	}
	results := make([][]Lifted, len(ranges))

	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}

	for i, rng := range ranges {
		g.Go(func() error {
			session, err := NewSession(mode, mem, rng, host)
			if err != nil {
				return fmt.Errorf("creating session for range %d: %w", i, err)
			}
			lifted, err := session.Lift(ctx, opts)
			if err != nil {
				return fmt.Errorf("lifting range %s-%s: %w", session.start, session.end, err)
			}
			results[i] = lifted
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
