// Package worker provides the background worker used to run canvas graphs
// asynchronously.
//
// A Worker consumes run tasks from a task queue. Each task names a graph,
// either inline or by the id of a snapshot in a persistence.GraphStore, and
// optionally a start node for a partial run. Every task runs on a fresh
// engine obtained from an EngineFactory, so tasks processed by several
// workers in parallel never share run state.
//
// # Worker Responsibilities
//
// A worker is responsible for:
//
//   - Polling a task queue for pending runs
//   - Loading the graph snapshot the task refers to
//   - Running the whole graph, or the descendants of the start node
//   - Reporting each finished run through Config.OnRunFinished
//
// In-flight runs can be cancelled by task id with Cancel.
//
// Most applications construct workers through canvasflow.LocalRunner, which
// wires a queue, a graph store and a pool of workers together.
package worker
