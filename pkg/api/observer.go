package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Observer receives callbacks from the engine for logging and metrics.
//
// Callbacks run on the engine's goroutines, possibly concurrently for nodes
// of the same layer. Implementations should be fast and safe for
// concurrent use.
type Observer interface {
	// OnRunStart is called once the plan is computed, before any node starts.
	OnRunStart(ctx context.Context, run ExecutionContext)

	// OnRunFinished is called when a run reaches completed, error or idle
	// (cancelled). err is the error returned to the caller.
	OnRunFinished(ctx context.Context, run ExecutionContext, err error)

	// OnNodeStart is called right before the executor is invoked.
	OnNodeStart(ctx context.Context, runID string, node Node)

	// OnNodeFinished is called after the executor returns, for successes
	// and failures alike, and for nodes skipped because of an upstream
	// failure (with a zero duration).
	OnNodeFinished(ctx context.Context, runID string, node Node, status NodeStatus, err error, duration time.Duration)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnRunStart(ctx context.Context, run ExecutionContext)                  {}
func (NoopObserver) OnRunFinished(ctx context.Context, run ExecutionContext, err error)    {}
func (NoopObserver) OnNodeStart(ctx context.Context, runID string, node Node)              {}
func (NoopObserver) OnNodeFinished(ctx context.Context, runID string, node Node, status NodeStatus, err error, d time.Duration) {
}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnRunStart(ctx context.Context, run ExecutionContext) {
	for _, o := range c.observers {
		o.OnRunStart(ctx, run)
	}
}

func (c *CompositeObserver) OnRunFinished(ctx context.Context, run ExecutionContext, err error) {
	for _, o := range c.observers {
		o.OnRunFinished(ctx, run, err)
	}
}

func (c *CompositeObserver) OnNodeStart(ctx context.Context, runID string, node Node) {
	for _, o := range c.observers {
		o.OnNodeStart(ctx, runID, node)
	}
}

func (c *CompositeObserver) OnNodeFinished(ctx context.Context, runID string, node Node, status NodeStatus, err error, d time.Duration) {
	for _, o := range c.observers {
		o.OnNodeFinished(ctx, runID, node, status, err, d)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs run / node lifecycle
// events using the provided slog.Logger. If logger is nil, slog.Default()
// is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnRunStart(ctx context.Context, run ExecutionContext) {
	o.Logger.InfoContext(ctx, "run_start",
		slog.String("run_id", run.RunID),
		slog.String("context_id", run.ContextID),
		slog.Int("total", run.Progress.Total),
	)
}

func (o *LoggingObserver) OnRunFinished(ctx context.Context, run ExecutionContext, err error) {
	level := slog.LevelInfo
	if run.Status == RunError {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, "run_finished",
		slog.String("run_id", run.RunID),
		slog.String("context_id", run.ContextID),
		slog.String("status", string(run.Status)),
		slog.Int("completed", run.Progress.Completed),
		slog.Int("total", run.Progress.Total),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnNodeStart(ctx context.Context, runID string, node Node) {
	o.Logger.DebugContext(ctx, "node_start",
		slog.String("run_id", runID),
		slog.String("node", node.ID),
		slog.String("type", node.Type),
	)
}

func (o *LoggingObserver) OnNodeFinished(ctx context.Context, runID string, node Node, status NodeStatus, err error, d time.Duration) {
	level := slog.LevelDebug
	switch status {
	case NodeFailed:
		level = slog.LevelError
	case NodeSkipped:
		level = slog.LevelWarn
	}
	o.Logger.Log(ctx, level, "node_finished",
		slog.String("run_id", runID),
		slog.String("node", node.ID),
		slog.String("type", node.Type),
		slog.String("status", string(status)),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

// BasicMetrics collects simple counters and aggregate node durations.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	runsStarted       atomic.Int64
	runsCompleted     atomic.Int64
	runsFailed        atomic.Int64
	runsCancelled     atomic.Int64
	nodesCompleted    atomic.Int64
	nodesFailed       atomic.Int64
	nodesSkipped      atomic.Int64
	totalNodeDuration atomic.Int64 // nanoseconds
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	RunsStarted   int64
	RunsCompleted int64
	RunsFailed    int64
	RunsCancelled int64
	ActiveRuns    int64

	NodesCompleted  int64
	NodesFailed     int64
	NodesSkipped    int64
	AvgNodeDuration time.Duration
}

func (m *BasicMetrics) OnRunStart(ctx context.Context, run ExecutionContext) {
	m.runsStarted.Add(1)
}

func (m *BasicMetrics) OnRunFinished(ctx context.Context, run ExecutionContext, err error) {
	switch run.Status {
	case RunCompleted:
		m.runsCompleted.Add(1)
	case RunError:
		m.runsFailed.Add(1)
	default:
		m.runsCancelled.Add(1)
	}
}

func (m *BasicMetrics) OnNodeFinished(ctx context.Context, runID string, node Node, status NodeStatus, err error, d time.Duration) {
	switch status {
	case NodeCompleted:
		// Only successful nodes count toward the average duration.
		m.nodesCompleted.Add(1)
		m.totalNodeDuration.Add(d.Nanoseconds())
	case NodeFailed:
		m.nodesFailed.Add(1)
	case NodeSkipped:
		m.nodesSkipped.Add(1)
	}
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	started := m.runsStarted.Load()
	completed := m.runsCompleted.Load()
	failed := m.runsFailed.Load()
	cancelled := m.runsCancelled.Load()
	nodes := m.nodesCompleted.Load()
	totalNs := m.totalNodeDuration.Load()

	var avg time.Duration
	if nodes > 0 {
		avg = time.Duration(totalNs / nodes)
	}

	return BasicMetricsSnapshot{
		RunsStarted:     started,
		RunsCompleted:   completed,
		RunsFailed:      failed,
		RunsCancelled:   cancelled,
		ActiveRuns:      started - completed - failed - cancelled,
		NodesCompleted:  nodes,
		NodesFailed:     m.nodesFailed.Load(),
		NodesSkipped:    m.nodesSkipped.Load(),
		AvgNodeDuration: avg,
	}
}
