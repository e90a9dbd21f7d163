package api

import "time"

// EventType identifies a run lifecycle event reported to observers.
type EventType string

const (
	EventRunStarted   EventType = "run.started"
	EventRunPaused    EventType = "run.paused"
	EventRunResumed   EventType = "run.resumed"
	EventRunCancelled EventType = "run.cancelled"
	EventRunCompleted EventType = "run.completed"
	EventRunFailed    EventType = "run.failed"

	EventNodeStarted   EventType = "node.started"
	EventNodeCompleted EventType = "node.completed"
	EventNodeFailed    EventType = "node.failed"
	EventNodeSkipped   EventType = "node.skipped"
)

// RunEvent is a small, human-oriented record of one lifecycle transition.
// It is kept in memory for the duration of a run only.
type RunEvent struct {
	RunID  string
	At     time.Time
	Type   EventType
	NodeID string

	// Detail holds short context such as an error message.
	Detail string
}
