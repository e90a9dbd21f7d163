package api

import (
	"strings"

	json "github.com/goccy/go-json"
)

// Node is a single task on the canvas.
//
// Type selects the node's capability through a Registry. Data is the
// caller's domain payload; the scheduler only reads it to check whether a
// required input channel carries a value.
type Node struct {
	ID   string         `json:"id"`
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// Edge is a directed data connection from Source to Target.
// SourceHandle and TargetHandle optionally name the output and input
// ports that the edge connects.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// Graph is a read-only snapshot of the canvas handed to the engine at
// the start of a run. The engine never mutates it.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node looks up a node by id.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Validate checks structural sanity: every node has a non-empty, unique id.
// Edges pointing at unknown nodes are tolerated and ignored by planning.
func (g Graph) Validate() error {
	seen := make(map[string]struct{}, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.ID == "" {
			return invalidf("node at index %d has an empty id", i)
		}
		if _, dup := seen[n.ID]; dup {
			return invalidf("duplicate node id %q", n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	return nil
}

// MarshalGraph encodes a graph snapshot as JSON.
func MarshalGraph(g Graph) ([]byte, error) {
	return json.Marshal(g)
}

// UnmarshalGraph decodes a JSON graph snapshot.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// HasValue reports whether v carries usable data: non-nil, strings must be
// non-blank, and slices and maps non-empty.
func HasValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case []any:
		return len(t) > 0
	case []string:
		return len(t) > 0
	case []byte:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
