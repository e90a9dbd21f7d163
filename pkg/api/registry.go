package api

import (
	"fmt"
	"sort"
	"sync"
)

// Capability tells the engine how to treat a node type.
type Capability string

const (
	// Executable nodes are forwarded to the NodeExecutor.
	Executable Capability = "executable"
	// DataSource nodes only supply data. They are marked completed without
	// calling the executor and are not counted in progress.
	DataSource Capability = "data-source"
)

// NodeType describes one registered type tag.
type NodeType struct {
	Tag        string
	Capability Capability
	// RequiredInputs lists input ports that must carry a value before a
	// partial run may start from a node of this type.
	RequiredInputs []string
}

// Registry maps node type tags to their capabilities.
// Unknown tags are treated as executable with no required inputs.
type Registry struct {
	mu    sync.RWMutex
	types map[string]NodeType
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]NodeType)}
}

// DefaultRegistry returns a registry populated with the canvas's built-in
// node types.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, tag := range []string{"text-input", "image-input", "file-input", "prompt", "note", "group"} {
		_ = r.Register(NodeType{Tag: tag, Capability: DataSource})
	}
	for _, tag := range []string{"llm", "image-gen", "video-gen"} {
		_ = r.Register(NodeType{Tag: tag, Capability: Executable, RequiredInputs: []string{"prompt"}})
	}
	for _, tag := range []string{"ocr-inpaint", "ppt-assembly", "output"} {
		_ = r.Register(NodeType{Tag: tag, Capability: Executable})
	}
	return r
}

// Register adds or replaces a node type.
func (r *Registry) Register(t NodeType) error {
	if t.Tag == "" {
		return fmt.Errorf("node type tag is required")
	}
	switch t.Capability {
	case Executable, DataSource:
	case "":
		t.Capability = Executable
	default:
		return fmt.Errorf("node type %q: unknown capability %q", t.Tag, t.Capability)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[t.Tag] = t
	return nil
}

// Lookup returns the registered type for tag, or an executable default.
func (r *Registry) Lookup(tag string) NodeType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, ok := r.types[tag]; ok {
		return t
	}
	return NodeType{Tag: tag, Capability: Executable}
}

// IsExecutable reports whether nodes of the given type run through the executor.
func (r *Registry) IsExecutable(tag string) bool {
	return r.Lookup(tag).Capability == Executable
}

// Tags returns the registered tags in sorted order.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.types))
	for tag := range r.types {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
