package canvasflow

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// GraphBuilder provides a fluent API for assembling graph snapshots:
//
//	g := canvasflow.NewGraph().
//	    Node("p", "prompt", map[string]any{"output": "a red fox"}).
//	    Node("img", "image-gen", nil).
//	    Node("out", "output", nil).
//	    Connect("p", "output", "img", "prompt").
//	    Edge("img", "out").
//	    MustBuild()
//
//	ctx, err := eng.ExecuteWorkflow(ctx, g, "canvas-1")
type GraphBuilder struct {
	g     Graph
	nodes map[string]struct{}
	edges int
}

// NewGraph creates an empty graph builder.
func NewGraph() *GraphBuilder {
	return &GraphBuilder{nodes: make(map[string]struct{})}
}

// Node appends a node. data is copied.
func (b *GraphBuilder) Node(id, typ string, data map[string]any) *GraphBuilder {
	if id == "" {
		panic("canvasflow: node id must not be empty")
	}
	if _, dup := b.nodes[id]; dup {
		panic(fmt.Sprintf("canvasflow: duplicate node id %q", id))
	}

	b.nodes[id] = struct{}{}
	b.g.Nodes = append(b.g.Nodes, Node{ID: id, Type: typ, Data: maps.Clone(data)})
	return b
}

// Edge connects source to target without port tags.
func (b *GraphBuilder) Edge(source, target string) *GraphBuilder {
	return b.Connect(source, "", target, "")
}

// Connect connects an output port of source to an input port of target.
func (b *GraphBuilder) Connect(source, sourceHandle, target, targetHandle string) *GraphBuilder {
	b.edges++
	b.g.Edges = append(b.g.Edges, Edge{
		ID:           fmt.Sprintf("e%d", b.edges),
		Source:       source,
		Target:       target,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
	})
	return b
}

// Build returns the graph. Every edge must reference nodes added to the
// builder. The builder may be reused; later changes do not affect graphs
// already built.
func (b *GraphBuilder) Build() (Graph, error) {
	var errs []error
	for _, e := range b.g.Edges {
		if _, ok := b.nodes[e.Source]; !ok {
			errs = append(errs, fmt.Errorf("%w: edge %s: unknown source %q", ErrInvalidGraph, e.ID, e.Source))
		}
		if _, ok := b.nodes[e.Target]; !ok {
			errs = append(errs, fmt.Errorf("%w: edge %s: unknown target %q", ErrInvalidGraph, e.ID, e.Target))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return Graph{}, err
	}

	return Graph{
		Nodes: slices.Clone(b.g.Nodes),
		Edges: slices.Clone(b.g.Edges),
	}, nil
}

// MustBuild is like Build but panics on error.
// Useful in examples and tests.
func (b *GraphBuilder) MustBuild() Graph {
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}
