package canvasflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/petrijr/canvasflow/internal/persistence"
	"github.com/petrijr/canvasflow/internal/taskqueue"
	"github.com/petrijr/canvasflow/pkg/worker"
)

// RunRequest asks a LocalRunner to run a graph in the background.
type RunRequest struct {
	// GraphID names a graph in the runner's store. Ignored when Graph is set.
	GraphID string
	Graph   *Graph

	// StartNodeID selects a partial run. Empty runs the whole graph.
	StartNodeID string
	ContextID   string
}

// RunResult reports a finished background run.
type RunResult struct {
	TaskID  string
	Request RunRequest
	Run     ExecutionContext
	Err     error
}

// LocalRunnerConfig configures NewLocalRunner.
type LocalRunnerConfig struct {
	// Engine is the template for the fresh engine each run gets.
	Engine EngineConfig

	// Store holds graphs referenced by RunRequest.GraphID. Defaults to an
	// in-memory store.
	Store GraphStore

	QueueCapacity int

	// OnRunFinished, if set, is called from worker goroutines after every run.
	OnRunFinished func(RunResult)

	Logger *slog.Logger
}

// LocalRunner bundles a graph store, an in-memory task queue and a Worker
// to run graphs asynchronously inside one process.
//
// Typical usage:
//
//	runner := canvasflow.NewLocalRunner(canvasflow.LocalRunnerConfig{
//	    Engine: canvasflow.EngineConfig{Executor: exec},
//	})
//	_ = runner.Store.SaveGraph(canvasflow.GraphRecord{ID: "canvas-1", Graph: g})
//
//	_ = runner.StartWorkers(ctx, 2)
//	taskID, _ := runner.StartRunAsync(ctx, canvasflow.RunRequest{GraphID: "canvas-1"})
//	...
//	runner.Stop()
type LocalRunner struct {
	// Store holds graph snapshots runs can refer to by id.
	Store GraphStore

	// Queue is the in-memory task queue used by the Worker.
	Queue taskqueue.Queue

	// Worker processes tasks from Queue, one fresh engine per task.
	Worker *worker.Worker

	logger *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewLocalRunner constructs a LocalRunner.
//
// This is intended for local development, tests, and simple single-process
// deployments.
func NewLocalRunner(cfg LocalRunnerConfig) *LocalRunner {
	if cfg.Store == nil {
		cfg.Store = persistence.NewInMemoryStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Engine.Logger == nil {
		cfg.Engine.Logger = cfg.Logger
	}

	q := taskqueue.NewInMemoryQueue(cfg.QueueCapacity)
	engineCfg := cfg.Engine
	w := worker.NewWithConfig(
		func() Engine { return NewEngine(engineCfg) },
		q,
		worker.Config{
			Store:         cfg.Store,
			Logger:        cfg.Logger,
			OnRunFinished: resultAdapter(cfg.OnRunFinished),
		},
	)

	return &LocalRunner{
		Store:  cfg.Store,
		Queue:  q,
		Worker: w,
		logger: cfg.Logger,
	}
}

func resultAdapter(fn func(RunResult)) func(worker.Result) {
	if fn == nil {
		return nil
	}
	return func(r worker.Result) {
		fn(RunResult{
			TaskID: r.Task.ID,
			Request: RunRequest{
				GraphID:     r.Task.GraphID,
				Graph:       r.Task.Graph,
				StartNodeID: r.Task.StartNodeID,
				ContextID:   r.Task.ContextID,
			},
			Run: r.Run,
			Err: r.Err,
		})
	}
}

// StartWorkers starts 'concurrency' worker goroutines that continuously call
// Worker.ProcessOne(ctx) until the context is cancelled via Stop.
//
// If StartWorkers is called more than once without Stop, it returns an error.
func (r *LocalRunner) StartWorkers(ctx context.Context, concurrency int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return errors.New("canvasflow: LocalRunner already started")
	}

	if concurrency <= 0 {
		concurrency = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true

	r.wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer r.wg.Done()

			for {
				processed, err := r.Worker.ProcessOne(ctx)
				if !processed {
					// Dequeue only fails once ctx is done.
					if ctx.Err() != nil {
						return
					}
					continue
				}
				if err != nil {
					// Run failures are reported through OnRunFinished; keep
					// the loop going so one bad graph doesn't stop the worker.
					r.logger.Debug("canvasflow: background run failed", "error", err)
				}
			}
		}()
	}

	return nil
}

// Stop cancels all worker goroutines started by StartWorkers and waits
// for them to exit. In-flight runs see their context cancelled and end idle.
func (r *LocalRunner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	r.running = false
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

// StartRunAsync enqueues a run and returns its task id.
func (r *LocalRunner) StartRunAsync(ctx context.Context, req RunRequest) (string, error) {
	return r.Worker.EnqueueRun(ctx, taskqueue.Task{
		GraphID:     req.GraphID,
		Graph:       req.Graph,
		StartNodeID: req.StartNodeID,
		ContextID:   req.ContextID,
	})
}

// CancelRun cancels a run. An executing run ends idle and is reported to
// OnRunFinished; a run still waiting in the queue is dropped without a
// result. It reports whether the task was found.
func (r *LocalRunner) CancelRun(taskID string) bool {
	return r.Worker.Cancel(taskID)
}
