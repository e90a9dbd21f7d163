// Package engine runs canvas graphs layer by layer with bounded parallelism,
// skip propagation on failure, and pause, resume and cancel controls.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/petrijr/canvasflow/internal/graph"
	"github.com/petrijr/canvasflow/internal/limiter"
	"github.com/petrijr/canvasflow/pkg/api"
)

// ErrNoExecutor is reported for every executable node of an engine built
// without a NodeExecutor.
var ErrNoExecutor = errors.New("no node executor configured")

// Config describes how to construct an Engine.
type Config struct {
	Executor api.NodeExecutor
	// Registry decides which node types are executed. Defaults to
	// api.DefaultRegistry().
	Registry *api.Registry
	Observer api.Observer
	Logger   *slog.Logger
	// MaxParallel bounds concurrent executor calls within a layer.
	// Values <= 0 mean api.DefaultMaxParallel.
	MaxParallel int
	// NewRunID overrides run id generation, mostly for tests.
	NewRunID func() string
}

// Engine schedules one graph run at a time. It implements api.Engine.
type Engine struct {
	executor api.NodeExecutor
	registry *api.Registry
	observer api.Observer
	logger   *slog.Logger
	limiter  *limiter.Limiter
	newRunID func() string

	bus  *statusBus
	gate pauseGate

	mu        sync.Mutex
	state     api.ExecutionContext
	active    bool
	cancelled bool
	failure   error
	cancel    context.CancelFunc
	plan      *plan
	history   []api.RunEvent
}

var _ api.Engine = (*Engine)(nil)

// New returns an idle engine.
func New(cfg Config) *Engine {
	e := &Engine{
		executor: cfg.Executor,
		registry: cfg.Registry,
		observer: cfg.Observer,
		logger:   cfg.Logger,
		limiter:  limiter.New(cfg.MaxParallel),
		newRunID: cfg.NewRunID,
		bus:      newStatusBus(),
		state:    api.NewExecutionContext(),
	}
	if e.executor == nil {
		e.executor = api.NodeExecutorFunc(func(ctx context.Context, node api.Node, contextID string) error {
			return ErrNoExecutor
		})
	}
	if e.registry == nil {
		e.registry = api.DefaultRegistry()
	}
	if e.observer == nil {
		e.observer = api.NoopObserver{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.newRunID == nil {
		e.newRunID = uuid.NewString
	}
	return e
}

// plan is the immutable schedule of one run.
type plan struct {
	nodes     []api.Node
	byID      map[string]api.Node
	edges     []api.Edge
	layers    [][]string
	countable map[string]bool
}

// ExecuteWorkflow implements api.Engine.
func (e *Engine) ExecuteWorkflow(ctx context.Context, g api.Graph, contextID string) (api.ExecutionContext, error) {
	return e.execute(ctx, g, "", contextID)
}

// ExecuteFromNode implements api.Engine.
func (e *Engine) ExecuteFromNode(ctx context.Context, startID string, g api.Graph, contextID string) (api.ExecutionContext, error) {
	if startID == "" {
		return api.ExecutionContext{}, fmt.Errorf("%w: empty start node id", api.ErrNodeNotFound)
	}
	return e.execute(ctx, g, startID, contextID)
}

func (e *Engine) execute(ctx context.Context, g api.Graph, startID, contextID string) (snap api.ExecutionContext, err error) {
	runCtx, err := e.begin(ctx, contextID)
	if err != nil {
		return e.GetStatus(), err
	}

	// Caller cancellation behaves like Cancel.
	stop := context.AfterFunc(ctx, e.Cancel)
	defer stop()
	if ctx.Err() != nil {
		e.Cancel()
	}

	started := false
	defer func() {
		if r := recover(); r != nil {
			snap, err = e.abort(fmt.Errorf("unexpected failure: %v", r))
			if started {
				e.observer.OnRunFinished(ctx, snap, err)
			}
		}
	}()

	p, key, err := e.buildPlan(g, startID)
	if err != nil {
		return e.fail(key, err)
	}

	run, ok := e.start(p)
	if !ok {
		return e.settle(runCtx)
	}
	started = true
	e.observer.OnRunStart(ctx, run)

	for i, layer := range p.layers {
		if runCtx.Err() != nil {
			break
		}
		e.logger.Debug("layer start", "run_id", run.RunID, "layer", i, "nodes", len(layer))
		e.runLayer(runCtx, p, layer, contextID)
	}

	snap, err = e.settle(runCtx)
	e.observer.OnRunFinished(ctx, snap, err)
	return snap, err
}

// settle ends the run once it is neither paused nor cancelled mid-way. A
// run paused after its last node start stays paused until Resume or Cancel.
func (e *Engine) settle(runCtx context.Context) (api.ExecutionContext, error) {
	for {
		_ = e.gate.Wait(runCtx)
		if snap, settled, err := e.finish(runCtx); settled {
			return snap, err
		}
	}
}

// buildPlan validates g and computes the layers. On failure it also
// returns the Errors key the failure is recorded under.
func (e *Engine) buildPlan(g api.Graph, startID string) (*plan, string, error) {
	if err := g.Validate(); err != nil {
		return nil, api.RunErrorKey, err
	}

	nodes, edges := g.Nodes, g.Edges
	if startID != "" {
		start, ok := g.Node(startID)
		if !ok {
			return nil, api.RunErrorKey, fmt.Errorf("%w: %q", api.ErrNodeNotFound, startID)
		}
		if err := checkInputs(start, g, e.registry.Lookup(start.Type).RequiredInputs); err != nil {
			return nil, startID, err
		}
		nodes, edges = graph.Induced(graph.Descendants(startID, nodes, edges), nodes, edges)
	}

	if err := graph.DetectCycle(nodes, edges).Err(); err != nil {
		return nil, api.RunErrorKey, err
	}
	layers, err := graph.Layers(nodes, edges)
	if err != nil {
		return nil, api.RunErrorKey, err
	}

	p := &plan{
		nodes:     nodes,
		byID:      make(map[string]api.Node, len(nodes)),
		edges:     edges,
		layers:    layers,
		countable: make(map[string]bool, len(nodes)),
	}
	for _, n := range nodes {
		p.byID[n.ID] = n
		p.countable[n.ID] = e.registry.IsExecutable(n.Type)
	}
	return p, "", nil
}

// runLayer completes the layer's data-source nodes in place and hands the
// executable ones to the limiter.
func (e *Engine) runLayer(ctx context.Context, p *plan, layer []string, contextID string) {
	executable := make([]string, 0, len(layer))
	for _, id := range layer {
		if p.countable[id] {
			executable = append(executable, id)
			continue
		}
		e.admit(ctx, id, e.completeDataSource)
	}
	if len(executable) == 0 {
		return
	}

	notStarted := e.limiter.RunLayer(ctx, executable, func(ctx context.Context, id string) {
		e.runNode(ctx, p.byID[id], contextID)
	})
	if len(notStarted) > 0 {
		e.logger.Debug("layer interrupted", "not_started", strings.Join(notStarted, ","))
	}
}

// admit waits on the pause gate until try takes the node out of pending,
// or reports that it must not start at all.
func (e *Engine) admit(ctx context.Context, id string, try func(context.Context, string) (ok, retry bool)) bool {
	for {
		if err := e.gate.Wait(ctx); err != nil {
			return false
		}
		ok, retry := try(ctx, id)
		if ok {
			return true
		}
		if !retry {
			return false
		}
	}
}

// runNode runs on a limiter goroutine, so it recovers its own panics.
func (e *Engine) runNode(ctx context.Context, node api.Node, contextID string) {
	defer func() {
		if r := recover(); r != nil {
			e.recoverNode(node, fmt.Errorf("unexpected failure: %v", r))
		}
	}()

	if !e.admit(ctx, node.ID, e.tryStart) {
		return
	}

	runID := e.runID()
	e.observer.OnNodeStart(ctx, runID, node)

	began := time.Now()
	err := e.invoke(ctx, node, contextID)
	d := time.Since(began)

	status, skipped, ok := e.finishNode(node.ID, err)
	if !ok {
		return
	}
	e.observer.OnNodeFinished(ctx, runID, node, status, err, d)
	for _, s := range skipped {
		e.observer.OnNodeFinished(ctx, runID, s, api.NodeSkipped, nil, 0)
	}
}

// invoke calls the executor, turning a panic into an error.
func (e *Engine) invoke(ctx context.Context, node api.Node, contextID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return e.executor.Execute(ctx, node, contextID)
}

// Pause implements api.Engine.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active || e.state.Status != api.RunRunning {
		return
	}
	e.state.Status = api.RunPaused
	e.gate.close()
	e.recordLocked(api.EventRunPaused, "", "")
	e.publishLocked()
}

// Resume implements api.Engine.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active || e.state.Status != api.RunPaused {
		return
	}
	e.state.Status = api.RunRunning
	e.gate.open()
	e.recordLocked(api.EventRunResumed, "", "")
	e.publishLocked()
}

// Cancel implements api.Engine.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active || e.cancelled {
		return
	}
	if e.state.Status != api.RunRunning && e.state.Status != api.RunPaused {
		return
	}
	e.cancelled = true
	e.state.Status = api.RunIdle
	e.state.FinishedAt = time.Now()
	e.cancel()
	e.gate.open()
	e.recordLocked(api.EventRunCancelled, "", "")
	e.publishLocked()
}

// GetStatus implements api.Engine.
func (e *Engine) GetStatus() api.ExecutionContext {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// OnStatusChange implements api.Engine.
func (e *Engine) OnStatusChange(fn func(api.ExecutionContext)) (unsubscribe func()) {
	return e.bus.subscribe(fn, nil)
}

// Subscribe implements api.Engine.
func (e *Engine) Subscribe() (<-chan api.ExecutionContext, func()) {
	ch := make(chan api.ExecutionContext)
	done := make(chan struct{})

	unsubscribe := e.bus.subscribe(func(snap api.ExecutionContext) {
		select {
		case ch <- snap:
		case <-done:
		}
	}, func() { close(ch) })

	return ch, sync.OnceFunc(func() {
		close(done)
		unsubscribe()
	})
}

// History returns the lifecycle events of the current or last run.
func (e *Engine) History() []api.RunEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.history)
}

func (e *Engine) runID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.RunID
}
