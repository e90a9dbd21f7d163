package canvasflow

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Router dispatches nodes to handlers by type tag.
//
//	r := canvasflow.NewRouter().
//	    Handle("llm", callModel).
//	    Handle("image-gen", renderImage)
//	eng := canvasflow.NewEngine(canvasflow.EngineConfig{Executor: r})
type Router struct {
	mu       sync.RWMutex
	handlers map[string]NodeExecutor
	fallback NodeExecutor
}

// NewRouter returns a Router with no handlers. Nodes without a handler
// fail unless a fallback is set.
func NewRouter() *Router {
	return &Router{handlers: make(map[string]NodeExecutor)}
}

// Handle registers the executor for a type tag.
func (r *Router) Handle(tag string, exec NodeExecutor) *Router {
	if exec == nil {
		panic(fmt.Sprintf("canvasflow: handler for %q is nil", tag))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[tag] = exec
	return r
}

// HandleFunc registers a function for a type tag.
func (r *Router) HandleFunc(tag string, fn func(ctx context.Context, node Node, contextID string) error) *Router {
	return r.Handle(tag, NodeExecutorFunc(fn))
}

// Fallback sets the executor for types without a handler.
func (r *Router) Fallback(exec NodeExecutor) *Router {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = exec
	return r
}

// Execute implements NodeExecutor.
func (r *Router) Execute(ctx context.Context, node Node, contextID string) error {
	r.mu.RLock()
	exec, ok := r.handlers[node.Type]
	if !ok {
		exec = r.fallback
	}
	r.mu.RUnlock()

	if exec == nil {
		return fmt.Errorf("no handler for node type %q", node.Type)
	}
	return exec.Execute(ctx, node, contextID)
}

// SleepExecutor returns an executor that waits for d, or until ctx is
// cancelled. Handy for demos and tests.
func SleepExecutor(d time.Duration) NodeExecutor {
	return NodeExecutorFunc(func(ctx context.Context, node Node, contextID string) error {
		t := time.NewTimer(d)
		defer t.Stop()

		select {
		case <-t.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// FailingExecutor returns an executor that fails every node with err.
func FailingExecutor(err error) NodeExecutor {
	return NodeExecutorFunc(func(ctx context.Context, node Node, contextID string) error {
		return fmt.Errorf("node %s: %w", node.ID, err)
	})
}
