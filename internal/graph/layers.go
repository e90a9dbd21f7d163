package graph

import "github.com/petrijr/canvasflow/pkg/api"

// Layers groups an acyclic graph into execution layers. Layer 0 holds every
// node without predecessors; each later layer holds the unplaced nodes whose
// predecessors all sit in earlier layers. Nodes within a layer keep input
// order, which callers must not rely on.
//
// Callers are expected to run DetectCycle first. If a cycle slipped through,
// Layers returns a *api.CycleError naming every node it could not place
// instead of an incomplete plan.
func Layers(nodes []api.Node, edges []api.Edge) ([][]string, error) {
	adj := index(nodes, edges)
	placed := make(map[string]struct{}, len(adj.order))
	var layers [][]string

	for {
		var layer []string
		for _, id := range adj.order {
			if _, ok := placed[id]; ok {
				continue
			}
			if predecessorsPlaced(adj.in[id], placed) {
				layer = append(layer, id)
			}
		}
		if len(layer) == 0 {
			break
		}
		// Mark after the scan so that a layer never contains one of its
		// own members' successors.
		for _, id := range layer {
			placed[id] = struct{}{}
		}
		layers = append(layers, layer)
	}

	var tail, blocked []string
	for _, id := range adj.order {
		if _, ok := placed[id]; ok {
			continue
		}
		if adj.isolated(id) {
			tail = append(tail, id)
			continue
		}
		blocked = append(blocked, id)
	}
	if len(blocked) > 0 {
		return nil, &api.CycleError{Nodes: blocked}
	}
	if len(tail) > 0 {
		layers = append(layers, tail)
	}
	return layers, nil
}

func predecessorsPlaced(preds map[string]struct{}, placed map[string]struct{}) bool {
	for p := range preds {
		if _, ok := placed[p]; !ok {
			return false
		}
	}
	return true
}

// LayerOf returns a node id → layer index lookup for a plan.
func LayerOf(layers [][]string) map[string]int {
	out := make(map[string]int)
	for i, layer := range layers {
		for _, id := range layer {
			out[id] = i
		}
	}
	return out
}
