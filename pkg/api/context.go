package api

import (
	"maps"
	"time"
)

// RunStatus represents the lifecycle state of a run.
type RunStatus string

const (
	RunIdle      RunStatus = "idle"
	RunRunning   RunStatus = "running"
	RunPaused    RunStatus = "paused"
	RunCompleted RunStatus = "completed"
	RunError     RunStatus = "error"
)

// Terminal reports whether the run has finished on its own.
// Idle is not terminal in this sense: it is the state before a run and
// after a cancellation.
func (s RunStatus) Terminal() bool {
	return s == RunCompleted || s == RunError
}

// NodeStatus represents the state of a single node within a run.
type NodeStatus string

const (
	NodePending   NodeStatus = "pending"
	NodeRunning   NodeStatus = "running"
	NodeCompleted NodeStatus = "completed"
	NodeFailed    NodeStatus = "failed"
	NodeSkipped   NodeStatus = "skipped"
)

// Done reports whether the node has reached a final state.
func (s NodeStatus) Done() bool {
	return s == NodeCompleted || s == NodeFailed || s == NodeSkipped
}

// RunErrorKey is the reserved Errors key for failures that belong to the
// whole run rather than to a single node.
const RunErrorKey = "__workflow__"

// DefaultMaxParallel is the per-layer concurrency used when none is configured.
const DefaultMaxParallel = 3

// Progress counts executable nodes that reached a final state.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// ExecutionContext is a snapshot of a run's state. Values handed out by
// the engine are copies; mutating them has no effect on the run.
type ExecutionContext struct {
	RunID        string                `json:"runId"`
	ContextID    string                `json:"contextId"`
	Status       RunStatus             `json:"status"`
	NodeStatuses map[string]NodeStatus `json:"nodeStatuses"`
	Errors       map[string]string     `json:"errors"`
	Progress     Progress              `json:"progress"`
	StartedAt    time.Time             `json:"startedAt"`
	FinishedAt   time.Time             `json:"finishedAt"`
}

// NewExecutionContext returns an idle context with empty maps.
func NewExecutionContext() ExecutionContext {
	return ExecutionContext{
		Status:       RunIdle,
		NodeStatuses: make(map[string]NodeStatus),
		Errors:       make(map[string]string),
	}
}

// Clone returns a deep copy.
func (c ExecutionContext) Clone() ExecutionContext {
	out := c
	out.NodeStatuses = maps.Clone(c.NodeStatuses)
	if out.NodeStatuses == nil {
		out.NodeStatuses = make(map[string]NodeStatus)
	}
	out.Errors = maps.Clone(c.Errors)
	if out.Errors == nil {
		out.Errors = make(map[string]string)
	}
	return out
}

// RunErr returns the run-level error message, if any.
func (c ExecutionContext) RunErr() string {
	return c.Errors[RunErrorKey]
}

// NodesWith returns the ids of nodes currently in the given status.
func (c ExecutionContext) NodesWith(status NodeStatus) []string {
	var ids []string
	for id, st := range c.NodeStatuses {
		if st == status {
			ids = append(ids, id)
		}
	}
	return ids
}
