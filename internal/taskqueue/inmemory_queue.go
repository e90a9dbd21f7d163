package taskqueue

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryQueue is a bounded FIFO of run tasks. It is safe for concurrent
// use. Unlike a plain channel it lets a queued run be withdrawn before any
// worker picks it up.
type InMemoryQueue struct {
	mu       sync.Mutex
	tasks    []Task
	capacity int
	// changed is closed and replaced whenever tasks gains or loses an entry.
	changed chan struct{}
}

// NewInMemoryQueue creates a new queue with the given capacity.
// Capacity <= 0 means 1024.
func NewInMemoryQueue(capacity int) *InMemoryQueue {
	if capacity <= 0 {
		capacity = 1024
	}
	return &InMemoryQueue{
		capacity: capacity,
		changed:  make(chan struct{}),
	}
}

// Ensure InMemoryQueue implements Queue.
var _ Queue = (*InMemoryQueue)(nil)

// Enqueue fills in ID and EnqueuedAt when they are empty. It blocks while
// the queue is full.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.EnqueuedAt.IsZero() {
		t.EnqueuedAt = time.Now()
	}

	for {
		q.mu.Lock()
		if len(q.tasks) < q.capacity {
			q.tasks = append(q.tasks, t)
			q.notifyLocked()
			q.mu.Unlock()
			return nil
		}
		wait := q.changed
		q.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *InMemoryQueue) Dequeue(ctx context.Context) (*Task, error) {
	for {
		q.mu.Lock()
		if len(q.tasks) > 0 {
			t := q.tasks[0]
			q.tasks = slices.Delete(q.tasks, 0, 1)
			q.notifyLocked()
			q.mu.Unlock()
			return &t, nil
		}
		wait := q.changed
		q.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (q *InMemoryQueue) Remove(taskID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := slices.IndexFunc(q.tasks, func(t Task) bool { return t.ID == taskID })
	if i < 0 {
		return false
	}
	q.tasks = slices.Delete(q.tasks, i, i+1)
	q.notifyLocked()
	return true
}

func (q *InMemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

func (q *InMemoryQueue) notifyLocked() {
	close(q.changed)
	q.changed = make(chan struct{})
}
