package graph

import "github.com/petrijr/canvasflow/pkg/api"

// adjacency is an index over a node/edge snapshot that keeps input order.
type adjacency struct {
	order []string
	known map[string]struct{}
	out   map[string][]string
	in    map[string]map[string]struct{}
}

func index(nodes []api.Node, edges []api.Edge) *adjacency {
	a := &adjacency{
		order: make([]string, 0, len(nodes)),
		known: make(map[string]struct{}, len(nodes)),
		out:   make(map[string][]string, len(nodes)),
		in:    make(map[string]map[string]struct{}, len(nodes)),
	}
	for _, n := range nodes {
		if _, dup := a.known[n.ID]; dup {
			continue
		}
		a.known[n.ID] = struct{}{}
		a.order = append(a.order, n.ID)
		a.in[n.ID] = make(map[string]struct{})
	}
	for _, e := range edges {
		if !a.has(e.Source) || !a.has(e.Target) {
			continue
		}
		if _, dup := a.in[e.Target][e.Source]; dup {
			continue
		}
		a.in[e.Target][e.Source] = struct{}{}
		a.out[e.Source] = append(a.out[e.Source], e.Target)
	}
	return a
}

func (a *adjacency) has(id string) bool {
	_, ok := a.known[id]
	return ok
}

// isolated reports whether id has no incident edges at all.
func (a *adjacency) isolated(id string) bool {
	return len(a.in[id]) == 0 && len(a.out[id]) == 0
}
