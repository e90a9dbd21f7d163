// Package taskqueue holds pending graph runs for background workers.
package taskqueue

import (
	"context"
	"time"

	"github.com/petrijr/canvasflow/pkg/api"
)

// Task represents one queued graph run.
type Task struct {
	ID string

	// GraphID names a stored graph. Graph, when set, is used instead and
	// GraphID is ignored.
	GraphID string
	Graph   *api.Graph

	// StartNodeID selects a partial run from that node. Empty runs the
	// whole graph.
	StartNodeID string
	ContextID   string

	EnqueuedAt time.Time
}

// Partial reports whether the task runs from a start node.
func (t Task) Partial() bool {
	return t.StartNodeID != ""
}

// Queue is a simple async task queue interface.
type Queue interface {
	// Enqueue adds a task to the queue. It should respect ctx for cancellation.
	Enqueue(ctx context.Context, t Task) error

	// Dequeue removes and returns the next task, blocking until one is available
	// or the context is cancelled.
	Dequeue(ctx context.Context) (*Task, error)

	// Len returns the approximate number of tasks queued.
	Len() int

	// Remove drops a task that has not been dequeued yet. It reports
	// whether the task was found.
	Remove(taskID string) bool
}
