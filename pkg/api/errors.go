package api

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidGraph is returned for malformed graph snapshots.
	ErrInvalidGraph = errors.New("invalid graph")

	// ErrCycle is returned when the graph contains a dependency cycle.
	ErrCycle = errors.New("cycle detected")

	// ErrMissingInput is returned by a partial run whose start node lacks a
	// required upstream input.
	ErrMissingInput = errors.New("missing required input")

	// ErrNodeNotFound is returned when a referenced node is not in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrRunInProgress is returned when a run is started on an engine that
	// is already running or paused.
	ErrRunInProgress = errors.New("run already in progress")

	// ErrNodesFailed is returned when a run finished with one or more failed
	// nodes.
	ErrNodesFailed = errors.New("one or more nodes failed")
)

// GraphError wraps graph validation failures.
type GraphError struct {
	Kind error
	Msg  string
}

func (e *GraphError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *GraphError) Unwrap() error { return e.Kind }

func invalidf(format string, args ...any) error {
	return &GraphError{Kind: ErrInvalidGraph, Msg: fmt.Sprintf(format, args...)}
}

// CycleError names the nodes that form (or are blocked by) a cycle.
type CycleError struct {
	Nodes []string
}

func (e *CycleError) Error() string {
	if len(e.Nodes) == 0 {
		return ErrCycle.Error()
	}
	return fmt.Sprintf("%s: %s", ErrCycle.Error(), strings.Join(e.Nodes, ", "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// MissingInputError is attributed to the start node of a partial run.
type MissingInputError struct {
	NodeID string
	Port   string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s: node %s has no value on input %q", ErrMissingInput.Error(), e.NodeID, e.Port)
}

func (e *MissingInputError) Unwrap() error { return ErrMissingInput }

// CycleNodes returns the node ids carried by a cycle error, if err is one.
func CycleNodes(err error) ([]string, bool) {
	var c *CycleError
	if errors.As(err, &c) {
		return c.Nodes, true
	}
	return nil, false
}
