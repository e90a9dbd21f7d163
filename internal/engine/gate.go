package engine

import (
	"context"
	"sync"
)

// pauseGate blocks node starts while a run is paused. Each pause cycle
// creates a fresh channel that is closed on resume, so waiters from one
// cycle can never be confused with the next.
type pauseGate struct {
	mu sync.Mutex
	ch chan struct{} // nil while open
}

// close makes subsequent Wait calls block. Closing a closed gate is a no-op.
func (g *pauseGate) close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ch == nil {
		g.ch = make(chan struct{})
	}
}

// open releases every waiter of the current cycle.
func (g *pauseGate) open() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ch != nil {
		close(g.ch)
		g.ch = nil
	}
}

// Wait returns once the gate is open or ctx is done.
func (g *pauseGate) Wait(ctx context.Context) error {
	g.mu.Lock()
	ch := g.ch
	g.mu.Unlock()

	if ch == nil {
		return ctx.Err()
	}
	select {
	case <-ch:
		return ctx.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
