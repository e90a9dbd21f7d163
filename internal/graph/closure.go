package graph

import "github.com/petrijr/canvasflow/pkg/api"

// Descendants returns startID followed by every node reachable from it,
// in breadth-first order. It returns nil if startID is not a known node.
func Descendants(startID string, nodes []api.Node, edges []api.Edge) []string {
	adj := index(nodes, edges)
	if !adj.has(startID) {
		return nil
	}

	seen := map[string]struct{}{startID: {}}
	order := []string{startID}
	for queue := []string{startID}; len(queue) > 0; {
		id := queue[0]
		queue = queue[1:]
		for _, next := range adj.out[id] {
			if _, ok := seen[next]; ok {
				continue
			}
			seen[next] = struct{}{}
			order = append(order, next)
			queue = append(queue, next)
		}
	}
	return order
}

// Induced restricts a graph to the given node ids: only those nodes, and
// only edges with both endpoints among them. Node and edge order is kept.
func Induced(ids []string, nodes []api.Node, edges []api.Edge) ([]api.Node, []api.Edge) {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}

	var outNodes []api.Node
	for _, n := range nodes {
		if _, ok := keep[n.ID]; ok {
			outNodes = append(outNodes, n)
		}
	}
	var outEdges []api.Edge
	for _, e := range edges {
		_, src := keep[e.Source]
		_, dst := keep[e.Target]
		if src && dst {
			outEdges = append(outEdges, e)
		}
	}
	return outNodes, outEdges
}

// Incoming returns the edges whose target is id, in input order.
func Incoming(id string, edges []api.Edge) []api.Edge {
	var out []api.Edge
	for _, e := range edges {
		if e.Target == id {
			out = append(out, e)
		}
	}
	return out
}
