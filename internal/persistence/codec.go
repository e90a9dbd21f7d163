package persistence

import (
	"fmt"
	"maps"
	"slices"

	"github.com/petrijr/canvasflow/pkg/api"
)

// EncodeGraph serializes g as JSON after validating it.
func EncodeGraph(g api.Graph) ([]byte, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	data, err := api.MarshalGraph(g)
	if err != nil {
		return nil, fmt.Errorf("encode graph: %w", err)
	}
	return data, nil
}

// DecodeGraph parses a graph previously written by EncodeGraph.
func DecodeGraph(data []byte) (api.Graph, error) {
	if len(data) == 0 {
		return api.Graph{}, nil
	}
	g, err := api.UnmarshalGraph(data)
	if err != nil {
		return api.Graph{}, fmt.Errorf("decode graph: %w", err)
	}
	return g, nil
}

// cloneGraph copies g so callers cannot mutate stored snapshots.
// Data values themselves are shared.
func cloneGraph(g api.Graph) api.Graph {
	out := api.Graph{
		Nodes: slices.Clone(g.Nodes),
		Edges: slices.Clone(g.Edges),
	}
	for i := range out.Nodes {
		out.Nodes[i].Data = maps.Clone(out.Nodes[i].Data)
	}
	return out
}
