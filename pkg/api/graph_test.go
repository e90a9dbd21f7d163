package api

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGraph_NodeLookup(t *testing.T) {
	g := Graph{Nodes: []Node{{ID: "a", Type: "prompt"}, {ID: "b", Type: "llm"}}}

	n, ok := g.Node("b")
	require.True(t, ok)
	require.Equal(t, "llm", n.Type)

	_, ok = g.Node("missing")
	require.False(t, ok)
}

func TestGraph_Validate(t *testing.T) {
	require.NoError(t, Graph{Nodes: []Node{{ID: "a"}, {ID: "b"}}}.Validate())

	err := Graph{Nodes: []Node{{ID: "a"}, {ID: ""}}}.Validate()
	require.ErrorIs(t, err, ErrInvalidGraph)

	err = Graph{Nodes: []Node{{ID: "a"}, {ID: "a"}}}.Validate()
	require.ErrorIs(t, err, ErrInvalidGraph)
	require.ErrorContains(t, err, `duplicate node id "a"`)
}

func TestGraph_JSONShape(t *testing.T) {
	raw := []byte(`{
		"nodes": [
			{"id": "p", "type": "prompt", "data": {"output": "a cat"}},
			{"id": "img", "type": "image-gen"}
		],
		"edges": [
			{"id": "e1", "source": "p", "target": "img", "targetHandle": "prompt"}
		]
	}`)

	g, err := UnmarshalGraph(raw)
	require.NoError(t, err)
	require.Len(t, g.Nodes, 2)
	require.Equal(t, "a cat", g.Nodes[0].Data["output"])
	require.Equal(t, Edge{ID: "e1", Source: "p", Target: "img", TargetHandle: "prompt"}, g.Edges[0])

	out, err := MarshalGraph(g)
	require.NoError(t, err)
	require.Contains(t, string(out), `"targetHandle":"prompt"`)
	require.NotContains(t, string(out), `"sourceHandle"`)
}

func TestHasValue(t *testing.T) {
	require.False(t, HasValue(nil))
	require.False(t, HasValue(""))
	require.False(t, HasValue("   "))
	require.False(t, HasValue([]any{}))
	require.False(t, HasValue(map[string]any{}))
	require.True(t, HasValue("x"))
	require.True(t, HasValue([]string{"img.png"}))
	require.True(t, HasValue(42))
}

func TestErrors_Unwrap(t *testing.T) {
	var err error = &CycleError{Nodes: []string{"a", "b"}}
	require.ErrorIs(t, err, ErrCycle)
	require.Equal(t, "cycle detected: a, b", err.Error())

	nodes, ok := CycleNodes(err)
	require.True(t, ok)
	require.Equal(t, []string{"a", "b"}, nodes)

	_, ok = CycleNodes(errors.New("other"))
	require.False(t, ok)

	err = &MissingInputError{NodeID: "gen", Port: "prompt"}
	require.ErrorIs(t, err, ErrMissingInput)
	require.ErrorContains(t, err, `node gen has no value on input "prompt"`)
}

func TestExecutionContext_CloneIsDeep(t *testing.T) {
	c := NewExecutionContext()
	c.NodeStatuses["a"] = NodePending
	c.Errors[RunErrorKey] = "boom"

	cp := c.Clone()
	cp.NodeStatuses["a"] = NodeCompleted
	cp.Errors["b"] = "x"

	require.Equal(t, NodePending, c.NodeStatuses["a"])
	require.NotContains(t, c.Errors, "b")
	require.Equal(t, "boom", cp.RunErr())
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()

	require.False(t, r.IsExecutable("prompt"))
	require.True(t, r.IsExecutable("llm"))
	require.Equal(t, []string{"prompt"}, r.Lookup("image-gen").RequiredInputs)

	unknown := r.Lookup("custom-thing")
	require.Equal(t, Executable, unknown.Capability)
	require.Empty(t, unknown.RequiredInputs)

	require.NoError(t, r.Register(NodeType{Tag: "custom-thing", Capability: DataSource}))
	require.False(t, r.IsExecutable("custom-thing"))

	require.NoError(t, r.Register(NodeType{Tag: "implicit"}))
	require.True(t, r.IsExecutable("implicit"))

	require.Error(t, r.Register(NodeType{Tag: ""}))
	require.Error(t, r.Register(NodeType{Tag: "bad", Capability: "magic"}))
	require.Contains(t, r.Tags(), "custom-thing")
}
