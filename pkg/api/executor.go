package api

import "context"

// NodeExecutor runs the domain logic of one node.
//
// Implementations receive the run's cancellation signal through ctx and
// must abort promptly once it is done, returning a non-nil error. A nil
// return means the node succeeded. Panics are recovered by the engine and
// reported as node failures.
type NodeExecutor interface {
	Execute(ctx context.Context, node Node, contextID string) error
}

// NodeExecutorFunc adapts a function to NodeExecutor.
type NodeExecutorFunc func(ctx context.Context, node Node, contextID string) error

func (f NodeExecutorFunc) Execute(ctx context.Context, node Node, contextID string) error {
	return f(ctx, node, contextID)
}
