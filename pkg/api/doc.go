// Package api contains the core building blocks used by the canvasflow
// scheduler: the graph snapshot types, run and node statuses, the
// NodeExecutor contract, the node type Registry, errors, and observers.
//
// Most users interact with the higher-level canvasflow package, which
// re-exports selected types and helpers from this package. The api package
// is intended for custom executors, observers, and integrations.
//
// # Graphs
//
// A Graph is a snapshot of the canvas: Nodes with a type tag and an opaque
// Data payload, and Edges that connect an output port of one node to an
// input port of another. The engine never mutates a Graph.
//
// # Node types
//
// A Registry maps type tags to a Capability. Executable nodes are handed to
// the NodeExecutor; DataSource nodes only provide data and are completed
// without running anything. Types may declare RequiredInputs, which are
// checked before a partial run starts from a node of that type.
//
// # Runs
//
// An ExecutionContext is the observable state of one run: the run status,
// per-node statuses, error messages keyed by node id (RunErrorKey for
// run-level errors) and progress counters. The engine publishes a copy on
// every change.
//
// # Observability
//
// The Observer interface receives run and node lifecycle callbacks.
// LoggingObserver writes them with log/slog, BasicMetrics keeps counters,
// and NewCompositeObserver fans out to several observers.
package api
