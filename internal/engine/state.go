package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/petrijr/canvasflow/pkg/api"
)

// All run state transitions live here. Every helper takes e.mu, mutates
// e.state and publishes one snapshot before releasing the lock, so
// subscribers observe transitions in the order they happened.

// begin resets the context for a new run.
func (e *Engine) begin(ctx context.Context, contextID string) (context.Context, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active {
		return nil, api.ErrRunInProgress
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.active = true
	e.cancelled = false
	e.failure = nil
	e.cancel = cancel
	e.plan = nil
	e.history = nil
	e.gate.open()

	e.state = api.NewExecutionContext()
	e.state.RunID = e.newRunID()
	e.state.ContextID = contextID
	e.state.Status = api.RunRunning
	e.state.StartedAt = time.Now()

	e.recordLocked(api.EventRunStarted, "", contextID)
	e.publishLocked()
	return runCtx, nil
}

// start installs p and marks its nodes pending. It reports false if the
// run was cancelled while planning.
func (e *Engine) start(p *plan) (api.ExecutionContext, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancelled {
		return api.ExecutionContext{}, false
	}

	e.plan = p
	for _, n := range p.nodes {
		e.state.NodeStatuses[n.ID] = api.NodePending
		if p.countable[n.ID] {
			e.state.Progress.Total++
		}
	}
	e.logger.Debug("run planned",
		"run_id", e.state.RunID,
		"layers", len(p.layers),
		"nodes", len(p.nodes),
		"total", e.state.Progress.Total,
	)
	e.publishLocked()
	return e.state.Clone(), true
}

// admitLocked reports whether a pending node may leave pending now. retry
// is true when the run is paused and the caller should wait on the gate
// again.
func (e *Engine) admitLocked(ctx context.Context, id string) (ok, retry bool) {
	if e.cancelled || ctx.Err() != nil {
		return false, false
	}
	if e.state.Status == api.RunPaused {
		return false, true
	}
	return e.state.NodeStatuses[id] == api.NodePending, false
}

// completeDataSource marks a data-source node completed.
func (e *Engine) completeDataSource(ctx context.Context, id string) (ok, retry bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ok, retry = e.admitLocked(ctx, id); !ok {
		return ok, retry
	}
	e.state.NodeStatuses[id] = api.NodeCompleted
	e.recordLocked(api.EventNodeCompleted, id, "data source")
	e.publishLocked()
	return true, false
}

// tryStart moves a pending node to running.
func (e *Engine) tryStart(ctx context.Context, id string) (ok, retry bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ok, retry = e.admitLocked(ctx, id); !ok {
		return ok, retry
	}
	e.state.NodeStatuses[id] = api.NodeRunning
	e.recordLocked(api.EventNodeStarted, id, "")
	e.publishLocked()
	return true, false
}

// finishNode records the executor result. ok is false when the run was
// cancelled in the meantime and the result is discarded.
func (e *Engine) finishNode(id string, err error) (status api.NodeStatus, skipped []api.Node, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancelled {
		return "", nil, false
	}

	if err == nil {
		status = api.NodeCompleted
		e.recordLocked(api.EventNodeCompleted, id, "")
	} else {
		status = api.NodeFailed
		e.state.Errors[id] = err.Error()
		e.recordLocked(api.EventNodeFailed, id, err.Error())
	}
	e.state.NodeStatuses[id] = status
	if e.plan.countable[id] {
		e.state.Progress.Completed++
	}
	if status == api.NodeFailed {
		skipped = e.skipDownstreamLocked(id)
	}
	e.publishLocked()
	return status, skipped, true
}

// recoverNode records a panic raised on a node goroutine outside the
// executor, for example in an observer hook. The node fails, its
// descendants are skipped, and the run ends in error once the remaining
// nodes settle.
func (e *Engine) recoverNode(node api.Node, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.logger.Error("node goroutine panicked", "run_id", e.state.RunID, "node_id", node.ID, "error", err)
	if e.cancelled || !e.active {
		return
	}
	if e.failure == nil {
		e.failure = err
		e.state.Errors[api.RunErrorKey] = err.Error()
	}
	if e.state.NodeStatuses[node.ID] == api.NodeRunning {
		e.state.NodeStatuses[node.ID] = api.NodeFailed
		e.state.Errors[node.ID] = err.Error()
		if e.plan.countable[node.ID] {
			e.state.Progress.Completed++
		}
		e.recordLocked(api.EventNodeFailed, node.ID, err.Error())
		e.skipDownstreamLocked(node.ID)
	}
	e.publishLocked()
}

// fail ends a run that never started executing nodes.
func (e *Engine) fail(key string, err error) (api.ExecutionContext, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancelled {
		e.closeLocked()
		return e.state.Clone(), nil
	}

	e.state.Status = api.RunError
	e.state.Errors[key] = err.Error()
	e.state.FinishedAt = time.Now()
	e.recordLocked(api.EventRunFailed, key, err.Error())
	e.closeLocked()
	e.publishLocked()
	return e.state.Clone(), err
}

// abort records an unexpected failure of the run itself.
func (e *Engine) abort(err error) (api.ExecutionContext, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.logger.Error("run aborted", "run_id", e.state.RunID, "error", err)
	e.state.Status = api.RunError
	e.state.Errors[api.RunErrorKey] = err.Error()
	e.state.FinishedAt = time.Now()
	e.recordLocked(api.EventRunFailed, "", err.Error())
	e.closeLocked()
	e.publishLocked()
	return e.state.Clone(), err
}

// finish sets the final status after the last layer. settled is false
// while the run is paused.
func (e *Engine) finish(runCtx context.Context) (snap api.ExecutionContext, settled bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancelled || runCtx.Err() != nil {
		if !e.cancelled {
			e.state.Status = api.RunIdle
			e.state.FinishedAt = time.Now()
			e.recordLocked(api.EventRunCancelled, "", "")
			e.publishLocked()
		}
		e.closeLocked()
		return e.state.Clone(), true, nil
	}
	if e.state.Status == api.RunPaused {
		return api.ExecutionContext{}, false, nil
	}

	var errs []error
	if e.failure != nil {
		errs = append(errs, e.failure)
	}
	if failed := e.state.NodesWith(api.NodeFailed); len(failed) > 0 {
		slices.Sort(failed)
		errs = append(errs, fmt.Errorf("%w: %s", api.ErrNodesFailed, strings.Join(failed, ", ")))
	}
	if err = errors.Join(errs...); err != nil {
		e.state.Status = api.RunError
		e.recordLocked(api.EventRunFailed, "", err.Error())
	} else {
		e.state.Status = api.RunCompleted
		e.recordLocked(api.EventRunCompleted, "", "")
	}
	e.state.FinishedAt = time.Now()
	e.closeLocked()
	e.publishLocked()
	return e.state.Clone(), true, err
}

func (e *Engine) closeLocked() {
	e.active = false
	if e.cancel != nil {
		e.cancel()
	}
	e.gate.open()
}

func (e *Engine) publishLocked() {
	e.bus.publish(e.state)
}

func (e *Engine) recordLocked(typ api.EventType, nodeID, detail string) {
	e.history = append(e.history, api.RunEvent{
		RunID:  e.state.RunID,
		At:     time.Now(),
		Type:   typ,
		NodeID: nodeID,
		Detail: detail,
	})
}
