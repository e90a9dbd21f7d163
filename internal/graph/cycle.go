package graph

import "github.com/petrijr/canvasflow/pkg/api"

// CycleResult reports whether a graph is cyclic and, if so, which nodes
// form the first cycle found.
type CycleResult struct {
	HasCycle   bool
	CycleNodes []string
}

// Err returns a *api.CycleError for a cyclic result, nil otherwise.
func (r CycleResult) Err() error {
	if !r.HasCycle {
		return nil
	}
	return &api.CycleError{Nodes: r.CycleNodes}
}

const (
	unvisited = iota
	inProgress
	done
)

// DetectCycle runs a three-colour depth-first search over the graph. Each
// unvisited node, in input order, becomes a DFS root until a back-edge into
// an in-progress node is found or every node is done.
//
// The reported cycle is the current DFS path from the repeated node to the
// node that closed the cycle.
func DetectCycle(nodes []api.Node, edges []api.Edge) CycleResult {
	adj := index(nodes, edges)
	color := make(map[string]int, len(adj.order))
	var path []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = inProgress
		path = append(path, id)

		for _, next := range adj.out[id] {
			switch color[next] {
			case inProgress:
				cycle = cycleFromPath(path, next)
				return true
			case unvisited:
				if visit(next) {
					return true
				}
			}
		}

		path = path[:len(path)-1]
		color[id] = done
		return false
	}

	for _, id := range adj.order {
		if color[id] != unvisited {
			continue
		}
		if visit(id) {
			return CycleResult{HasCycle: true, CycleNodes: cycle}
		}
	}
	return CycleResult{}
}

// cycleFromPath truncates the DFS path at the first occurrence of repeated
// and deduplicates what remains.
func cycleFromPath(path []string, repeated string) []string {
	start := 0
	for i, id := range path {
		if id == repeated {
			start = i
			break
		}
	}

	seen := make(map[string]struct{}, len(path)-start)
	out := make([]string, 0, len(path)-start)
	for _, id := range path[start:] {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
