package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/petrijr/canvasflow/internal/persistence"
	"github.com/petrijr/canvasflow/internal/taskqueue"
	"github.com/petrijr/canvasflow/pkg/api"
)

// ErrNoGraph is returned for a task that names neither a graph nor a
// stored graph id.
var ErrNoGraph = errors.New("task has no graph")

// EngineFactory returns a fresh engine for one run.
type EngineFactory func() api.Engine

// Result describes one processed task.
type Result struct {
	Task taskqueue.Task
	Run  api.ExecutionContext
	Err  error
}

// Config holds optional Worker settings.
type Config struct {
	// Store resolves Task.GraphID. Tasks carrying their own Graph do not
	// need it.
	Store persistence.GraphStore

	// OnRunFinished, if set, is called after every processed task.
	OnRunFinished func(Result)

	Logger *slog.Logger
}

// Worker pulls run tasks from a Queue and executes each one on its own
// engine.
type Worker struct {
	newEngine EngineFactory
	queue     taskqueue.Queue
	cfg       Config

	mu     sync.Mutex
	active map[string]context.CancelFunc
}

// New creates a new Worker.
func New(newEngine EngineFactory, queue taskqueue.Queue, store persistence.GraphStore) *Worker {
	return NewWithConfig(newEngine, queue, Config{Store: store})
}

// NewWithConfig creates a Worker with explicit settings.
func NewWithConfig(newEngine EngineFactory, queue taskqueue.Queue, cfg Config) *Worker {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Worker{
		newEngine: newEngine,
		queue:     queue,
		cfg:       cfg,
		active:    make(map[string]context.CancelFunc),
	}
}

// EnqueueRun enqueues a run task and returns its id. It does NOT run the
// graph itself; that is done by ProcessOne.
func (w *Worker) EnqueueRun(ctx context.Context, t taskqueue.Task) (string, error) {
	if t.Graph == nil && t.GraphID == "" {
		return "", ErrNoGraph
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := w.queue.Enqueue(ctx, t); err != nil {
		return "", err
	}
	return t.ID, nil
}

// ProcessOne pulls a single task from the queue and runs it.
// Returns (processed, error):
//   - processed == false: no task was obtained (ctx cancelled or dequeue error)
//   - processed == true: a task was run; err is the run error, if any.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	task, err := w.queue.Dequeue(ctx)
	if err != nil {
		return false, err
	}
	if task == nil {
		return false, nil
	}

	run, runErr := w.process(ctx, *task)
	if w.cfg.OnRunFinished != nil {
		w.cfg.OnRunFinished(Result{Task: *task, Run: run, Err: runErr})
	}
	return true, runErr
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		processed, err := w.ProcessOne(ctx)
		if !processed {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				return err
			}
			continue
		}
		if err != nil {
			w.cfg.Logger.Debug("task finished with error", "error", err)
		}
	}
}

// Cancel stops a task. A task this worker is processing has its run
// cancelled and ends idle; a task still waiting in the queue is dropped
// without a Result. It reports whether the task was found.
func (w *Worker) Cancel(taskID string) bool {
	w.mu.Lock()
	cancel, ok := w.active[taskID]
	w.mu.Unlock()

	if ok {
		cancel()
		return true
	}
	return w.queue.Remove(taskID)
}

func (w *Worker) process(ctx context.Context, task taskqueue.Task) (api.ExecutionContext, error) {
	g, err := w.resolveGraph(task)
	if err != nil {
		w.cfg.Logger.Error("task rejected", "task_id", task.ID, "graph_id", task.GraphID, "error", err)
		return api.ExecutionContext{}, err
	}

	// Cancel may arrive before the engine has begun the run; cancelling the
	// run context covers that window too.
	ctx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.active[task.ID] = cancel
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		delete(w.active, task.ID)
		w.mu.Unlock()
		cancel()
	}()

	eng := w.newEngine()

	w.cfg.Logger.Debug("task start",
		"task_id", task.ID,
		"graph_id", task.GraphID,
		"start_node", task.StartNodeID,
		"context_id", task.ContextID,
	)

	if task.Partial() {
		return eng.ExecuteFromNode(ctx, task.StartNodeID, g, task.ContextID)
	}
	return eng.ExecuteWorkflow(ctx, g, task.ContextID)
}

func (w *Worker) resolveGraph(task taskqueue.Task) (api.Graph, error) {
	if task.Graph != nil {
		return *task.Graph, nil
	}
	if task.GraphID == "" {
		return api.Graph{}, ErrNoGraph
	}
	if w.cfg.Store == nil {
		return api.Graph{}, fmt.Errorf("graph %q: no graph store configured", task.GraphID)
	}
	rec, err := w.cfg.Store.GetGraph(task.GraphID)
	if err != nil {
		return api.Graph{}, fmt.Errorf("graph %q: %w", task.GraphID, err)
	}
	return rec.Graph, nil
}
