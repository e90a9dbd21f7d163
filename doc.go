// Package canvasflow schedules the nodes of a visual workflow canvas.
//
// A canvas is handed to the scheduler as a Graph snapshot: nodes with a type
// tag and an opaque data payload, and edges connecting an output port of one
// node to an input port of another. canvasflow runs the graph in dependency
// order, many nodes at a time, and keeps the canvas informed about progress.
// It does not know what a node does; that is the job of a NodeExecutor
// supplied by the application.
//
// # Core Concepts
//
//  1. Graph and GraphBuilder
//  2. Engine
//  3. NodeExecutor and Registry
//  4. ExecutionContext
//  5. LocalRunner
//
// # Engine
//
// NewEngine returns an Engine that runs one graph at a time:
//
//   - ExecuteWorkflow runs every node.
//   - ExecuteFromNode runs a start node and everything downstream of it,
//     after checking that the start node's required inputs carry a value.
//   - Pause stops new nodes from starting; Resume lets them continue.
//   - Cancel aborts the run. In-flight executors see their context
//     cancelled and the run ends idle.
//
// Before anything runs the graph is checked for cycles and split into
// layers. All nodes of a layer finish before the next layer starts, and at
// most MaxParallel executor calls run at once within a layer (default 3).
//
// A failing node does not stop the run: its downstream nodes are marked
// skipped, unrelated branches keep going, and the run ends in RunError.
//
// # NodeExecutor and Registry
//
// A NodeExecutor performs the work of one node. Router dispatches to
// per-type handlers. The Registry decides which node types are executable;
// data-source types such as "prompt" or "image-input" only carry data and
// are marked completed without calling the executor.
//
// # ExecutionContext
//
// The observable state of a run: the run status, a status per node, error
// messages per node (RunErrorKey for run-level errors) and a progress
// counter. GetStatus returns a snapshot; OnStatusChange and Subscribe
// deliver a snapshot after every change, in order, without blocking the
// run.
//
// # LocalRunner
//
// LocalRunner runs graphs in the background: requests are queued and
// picked up by worker goroutines, each run on a fresh engine. Graphs can be
// passed inline or stored in a GraphStore (in memory or SQLite) and
// referenced by id.
//
// # Observability
//
// Observers receive run and node lifecycle callbacks. NewLoggingObserver
// writes them with log/slog and BasicMetrics keeps counters.
//
// For complete programs, see the /examples directory.
package canvasflow
