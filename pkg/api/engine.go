package api

import "context"

// Engine schedules one graph run at a time.
//
// An Engine is constructed and owned by its caller; independent engines
// run independently.
type Engine interface {
	// ExecuteWorkflow runs every node of g in dependency order and blocks
	// until the run reaches a terminal status or is cancelled.
	//
	// The returned context is the final snapshot. The error is non-nil for
	// cycles, unexpected run failures, and runs that ended with failed
	// nodes (wrapping ErrNodesFailed). A cancelled run returns a nil error
	// and a snapshot whose Status is RunIdle.
	ExecuteWorkflow(ctx context.Context, g Graph, contextID string) (ExecutionContext, error)

	// ExecuteFromNode runs startID and all of its transitive descendants.
	// The start node's required inputs are validated first; on failure no
	// node is executed.
	ExecuteFromNode(ctx context.Context, startID string, g Graph, contextID string) (ExecutionContext, error)

	// Pause stops new node starts, including data-source nodes. Nodes
	// already executing finish normally. A run paused after its last node
	// started does not end until Resume or Cancel. It only has effect
	// while running.
	Pause()

	// Resume lets blocked node starts proceed. It only has effect while paused.
	Resume()

	// Cancel aborts the current run. In-flight executors see their context
	// cancelled and the run ends in RunIdle.
	//
	// RunIdle is not a terminal status, and the cancelled snapshot is not
	// settled: nodes that were executing stay NodeRunning (their late
	// results are discarded), nodes that never started stay NodePending,
	// and Progress.Completed may be less than Progress.Total.
	Cancel()

	// GetStatus returns a snapshot of the current run state.
	GetStatus() ExecutionContext

	// OnStatusChange registers fn to receive a snapshot after every state
	// change. Snapshots are delivered in order on a goroutine owned by the
	// subscription. The returned func unsubscribes.
	OnStatusChange(fn func(ExecutionContext)) (unsubscribe func())

	// Subscribe is the channel form of OnStatusChange. The channel is
	// closed after cancel is called.
	Subscribe() (ch <-chan ExecutionContext, cancel func())
}
