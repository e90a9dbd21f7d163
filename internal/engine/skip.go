package engine

import (
	"fmt"

	"github.com/petrijr/canvasflow/internal/graph"
	"github.com/petrijr/canvasflow/pkg/api"
)

// skipDownstreamLocked marks every pending descendant of failedID as
// skipped and returns them. Nodes that already started or finished are
// left alone, so calling it twice for the same failure changes nothing.
func (e *Engine) skipDownstreamLocked(failedID string) []api.Node {
	var skipped []api.Node
	for _, id := range graph.Descendants(failedID, e.plan.nodes, e.plan.edges) {
		if id == failedID || e.state.NodeStatuses[id] != api.NodePending {
			continue
		}
		e.state.NodeStatuses[id] = api.NodeSkipped
		e.state.Errors[id] = fmt.Sprintf("skipped: upstream %s failed", failedID)
		if e.plan.countable[id] {
			e.state.Progress.Completed++
		}
		e.recordLocked(api.EventNodeSkipped, id, failedID)
		skipped = append(skipped, e.plan.byID[id])
	}
	return skipped
}
