// Package limiter runs the nodes of one layer with bounded parallelism.
package limiter

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/petrijr/canvasflow/pkg/api"
)

// Limiter admits at most Max concurrent calls per layer.
//
// Admission is FIFO: ids are offered to a weighted semaphore in order by a
// single dispatcher, and the semaphore serves waiters in arrival order, so
// the longest-waiting start is always admitted next.
type Limiter struct {
	max int
}

// New returns a Limiter. maxParallel <= 0 means api.DefaultMaxParallel.
func New(maxParallel int) *Limiter {
	if maxParallel <= 0 {
		maxParallel = api.DefaultMaxParallel
	}
	return &Limiter{max: maxParallel}
}

// Max returns the concurrency bound.
func (l *Limiter) Max() int {
	return l.max
}

// RunLayer calls fn once for each id with at most Max calls in flight and
// returns after every started call has returned.
//
// If ctx is done while waiting for a free slot, the remaining ids are not
// started; they are returned in order so the caller can account for them.
func (l *Limiter) RunLayer(ctx context.Context, ids []string, fn func(ctx context.Context, id string)) (notStarted []string) {
	sem := semaphore.NewWeighted(int64(l.max))
	var wg sync.WaitGroup

	for i, id := range ids {
		if err := sem.Acquire(ctx, 1); err != nil {
			notStarted = append(notStarted, ids[i:]...)
			break
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			defer sem.Release(1)
			fn(ctx, id)
		}(id)
	}

	wg.Wait()
	return notStarted
}
