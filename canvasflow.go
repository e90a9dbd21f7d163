package canvasflow

import (
	"log/slog"

	"github.com/petrijr/canvasflow/internal/engine"
	"github.com/petrijr/canvasflow/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Engine               = api.Engine
	Graph                = api.Graph
	Node                 = api.Node
	Edge                 = api.Edge
	ExecutionContext     = api.ExecutionContext
	RunStatus            = api.RunStatus
	NodeStatus           = api.NodeStatus
	Progress             = api.Progress
	NodeExecutor         = api.NodeExecutor
	NodeExecutorFunc     = api.NodeExecutorFunc
	Registry             = api.Registry
	NodeType             = api.NodeType
	Capability           = api.Capability
	RunEvent             = api.RunEvent
	CycleError           = api.CycleError
	MissingInputError    = api.MissingInputError
	Observer             = api.Observer
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	CompositeObserver    = api.CompositeObserver
	NoopObserver         = api.NoopObserver
)

// Re-export common helpers.

var (
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
	NewRegistry          = api.NewRegistry
	DefaultRegistry      = api.DefaultRegistry
	MarshalGraph         = api.MarshalGraph
	UnmarshalGraph       = api.UnmarshalGraph
)

// Re-export errors.

var (
	ErrInvalidGraph  = api.ErrInvalidGraph
	ErrCycle         = api.ErrCycle
	ErrMissingInput  = api.ErrMissingInput
	ErrNodeNotFound  = api.ErrNodeNotFound
	ErrRunInProgress = api.ErrRunInProgress
	ErrNodesFailed   = api.ErrNodesFailed
)

// Re-export status values for convenience.

const (
	RunIdle      = api.RunIdle
	RunRunning   = api.RunRunning
	RunPaused    = api.RunPaused
	RunCompleted = api.RunCompleted
	RunError     = api.RunError

	NodePending   = api.NodePending
	NodeRunning   = api.NodeRunning
	NodeCompleted = api.NodeCompleted
	NodeFailed    = api.NodeFailed
	NodeSkipped   = api.NodeSkipped

	Executable = api.Executable
	DataSource = api.DataSource

	RunErrorKey        = api.RunErrorKey
	DefaultMaxParallel = api.DefaultMaxParallel
)

// EngineConfig configures NewEngine. Only Executor is required.
type EngineConfig struct {
	Executor NodeExecutor
	Registry *Registry
	Observer Observer
	Logger   *slog.Logger

	// MaxParallel bounds concurrent executor calls within a layer.
	// Zero means DefaultMaxParallel.
	MaxParallel int
}

// NewEngine returns an idle engine. Each engine drives one run at a time;
// create one per canvas (or per run) to execute graphs independently.
func NewEngine(cfg EngineConfig) Engine {
	return engine.New(engine.Config{
		Executor:    cfg.Executor,
		Registry:    cfg.Registry,
		Observer:    cfg.Observer,
		Logger:      cfg.Logger,
		MaxParallel: cfg.MaxParallel,
	})
}

// History returns the lifecycle events of the engine's current or last run.
// It returns nil for engines not created by NewEngine.
func History(eng Engine) []RunEvent {
	if h, ok := eng.(interface{ History() []RunEvent }); ok {
		return h.History()
	}
	return nil
}
