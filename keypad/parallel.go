package keypad

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ExhaustiveParallel splits the search space into one contiguous chunk per
// worker. The first worker to unlock the keypad cancels the others.
// workers <= 0 uses every CPU.
func ExhaustiveParallel(ctx context.Context, k *Full, workers int) (string, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	searchSpace := Space(k.Digits())
	if int64(workers) > searchSpace {
		workers = int(searchSpace)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var found atomic.Int64
	found.Store(-1)

	g, gctx := errgroup.WithContext(ctx)
	chunkSize := searchSpace / int64(workers)
	for i := 0; i < workers; i++ {
		startRange := int64(i) * chunkSize
		endRange := (int64(i) + 1) * chunkSize
		if i == workers-1 {
			endRange = searchSpace
		}
		g.Go(func() error {
			return worker(gctx, k, startRange, endRange, &found, cancel)
		})
	}
	err := g.Wait()

	if guess := found.Load(); guess >= 0 {
		return k.Format(guess), nil
	}
	if err != nil {
		return "", errors.Wrap(err, "parallel search stopped")
	}
	return "", errors.New("secret not in search space")
}

// worker scans [start, end). It returns the context error when stopped early;
// that error is discarded by the caller once a guess has been found.
func worker(ctx context.Context, k *Full, start, end int64, found *atomic.Int64, cancel context.CancelFunc) error {
	for i := start; i < end; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if k.Submit(i) {
				found.Store(i)
				cancel()
				return nil
			}
		}
	}
	return nil
}
