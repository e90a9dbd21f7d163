package engine

import (
	"github.com/petrijr/canvasflow/internal/graph"
	"github.com/petrijr/canvasflow/pkg/api"
)

// checkInputs verifies that every required port of start carries a value,
// either in the node's own data or from an upstream node wired to it.
// An edge without a target handle feeds every port.
func checkInputs(start api.Node, g api.Graph, required []string) error {
	incoming := graph.Incoming(start.ID, g.Edges)

	for _, port := range required {
		if api.HasValue(start.Data[port]) {
			continue
		}
		satisfied := false
		for _, edge := range incoming {
			if edge.TargetHandle != "" && edge.TargetHandle != port {
				continue
			}
			src, ok := g.Node(edge.Source)
			if ok && api.HasValue(probe(src, edge.SourceHandle, port)) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return &api.MissingInputError{NodeID: start.ID, Port: port}
		}
	}
	return nil
}

// probe returns the value src offers on an outgoing edge.
func probe(src api.Node, sourceHandle, port string) any {
	if sourceHandle != "" {
		if v := src.Data[sourceHandle]; api.HasValue(v) {
			return v
		}
	}
	if v := src.Data["output"]; api.HasValue(v) {
		return v
	}
	return src.Data[port]
}
