package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Workflow is the editor's node and connection collection. It is a
// single-writer structure: only interaction handlers mutate it, everything
// else (indices, geometry, autosave) derives from it.
type Workflow struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name,omitempty" yaml:"name,omitempty"`
	Nodes       []Node       `json:"nodes" yaml:"nodes"`
	Connections []Connection `json:"connections" yaml:"connections"`
}

// NewWorkflow creates an empty workflow.
func NewWorkflow(id, name string) *Workflow {
	return &Workflow{ID: id, Name: name}
}

// Node returns the node with the given ID.
func (w *Workflow) Node(id string) (Node, bool) {
	for _, n := range w.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// AddNode appends a node to the collection.
func (w *Workflow) AddNode(n Node) {
	w.Nodes = append(w.Nodes, n)
}

// MoveNode updates a node's canvas position.
func (w *Workflow) MoveNode(id string, pos Point) error {
	for i := range w.Nodes {
		if w.Nodes[i].ID == id {
			w.Nodes[i].Position = pos
			return nil
		}
	}
	return fmt.Errorf("move %q: %w", id, ErrNodeNotFound)
}

// RemoveNode deletes a node and cascade-deletes every connection that
// references it.
func (w *Workflow) RemoveNode(id string) error {
	idx := -1
	for i := range w.Nodes {
		if w.Nodes[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("remove %q: %w", id, ErrNodeNotFound)
	}
	w.Nodes = append(w.Nodes[:idx], w.Nodes[idx+1:]...)

	kept := w.Connections[:0]
	for _, c := range w.Connections {
		if c.From.NodeID == id || c.To.NodeID == id {
			continue
		}
		kept = append(kept, c)
	}
	w.Connections = kept
	return nil
}

// Connect creates a connection between an output and an input port after
// checking that both endpoints exist.
func (w *Workflow) Connect(from, to PortRef) (Connection, error) {
	src, ok := w.Node(from.NodeID)
	if !ok {
		return Connection{}, fmt.Errorf("connect from %q: %w", from.NodeID, ErrNodeNotFound)
	}
	dst, ok := w.Node(to.NodeID)
	if !ok {
		return Connection{}, fmt.Errorf("connect to %q: %w", to.NodeID, ErrNodeNotFound)
	}
	if !src.HasPort(from.Port, DirectionOutput) {
		return Connection{}, fmt.Errorf("node %q output %q: %w", from.NodeID, from.Port, ErrUnknownPort)
	}
	if !dst.HasPort(to.Port, DirectionInput) {
		return Connection{}, fmt.Errorf("node %q input %q: %w", to.NodeID, to.Port, ErrUnknownPort)
	}

	conn := NewConnection(from, to)
	w.Connections = append(w.Connections, conn)
	return conn, nil
}

// Disconnect removes a connection by ID.
func (w *Workflow) Disconnect(id string) error {
	for i := range w.Connections {
		if w.Connections[i].ID == id {
			w.Connections = append(w.Connections[:i], w.Connections[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("disconnect %q: %w", id, ErrConnectionNotFound)
}

// Snapshot serializes the workflow for save-equality comparison and
// persistence. encoding/json writes map keys in sorted order, so equal
// workflows always produce byte-equal snapshots.
func (w *Workflow) Snapshot() ([]byte, error) {
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workflow: %w", err)
	}
	return data, nil
}

// Validate checks referential integrity: duplicate node IDs, connections
// pointing at missing nodes or undeclared ports, and non-finite positions.
// All findings are joined into a single error; nil means the workflow is
// safe to persist and index.
func (w *Workflow) Validate() error {
	var errs []error

	seen := make(map[string]bool, len(w.Nodes))
	for _, n := range w.Nodes {
		if n.ID == "" {
			errs = append(errs, errors.New("node with empty id"))
			continue
		}
		if seen[n.ID] {
			errs = append(errs, fmt.Errorf("duplicate node id %q", n.ID))
		}
		seen[n.ID] = true
		if !n.Position.IsFinite() {
			errs = append(errs, fmt.Errorf("node %q has a non-finite position", n.ID))
		}
	}

	for _, c := range w.Connections {
		src, ok := w.Node(c.From.NodeID)
		if !ok {
			errs = append(errs, fmt.Errorf("connection %q: source node %q: %w", c.ID, c.From.NodeID, ErrNodeNotFound))
		} else if !src.HasPort(c.From.Port, DirectionOutput) {
			errs = append(errs, fmt.Errorf("connection %q: node %q output %q: %w", c.ID, c.From.NodeID, c.From.Port, ErrUnknownPort))
		}
		dst, ok := w.Node(c.To.NodeID)
		if !ok {
			errs = append(errs, fmt.Errorf("connection %q: target node %q: %w", c.ID, c.To.NodeID, ErrNodeNotFound))
		} else if !dst.HasPort(c.To.Port, DirectionInput) {
			errs = append(errs, fmt.Errorf("connection %q: node %q input %q: %w", c.ID, c.To.NodeID, c.To.Port, ErrUnknownPort))
		}
	}

	return errors.Join(errs...)
}

// Clone returns a deep copy. Stores save copies so the caller cannot mutate
// persisted state through shared slices.
func (w *Workflow) Clone() *Workflow {
	data, err := json.Marshal(w)
	if err != nil {
		// Workflow contains only JSON-serializable fields.
		panic(fmt.Sprintf("workflow clone: %v", err))
	}
	var out Workflow
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("workflow clone: %v", err))
	}
	return &out
}
