package domain

import "math"

// PortDirection distinguishes the two sides of a node.
type PortDirection string

const (
	// DirectionInput marks ports on the receiving side of a node.
	DirectionInput PortDirection = "input"
	// DirectionOutput marks ports on the emitting side of a node.
	DirectionOutput PortDirection = "output"
)

// Point is a coordinate in canvas space.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// IsFinite reports whether both coordinates are ordinary numbers.
// NaN or infinite coordinates come from upstream layout bugs and must never
// enter an index or a rendered path.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// DistanceTo returns the Euclidean distance to another point.
func (p Point) DistanceTo(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Node is a unit on the canvas. Position is the single source of truth for
// every derived port coordinate; Inputs and Outputs are ordered and their
// order is part of the node's layout.
type Node struct {
	ID       string         `json:"id" yaml:"id"`
	Type     string         `json:"type" yaml:"type"`
	Name     string         `json:"name,omitempty" yaml:"name,omitempty"`
	Position Point          `json:"position" yaml:"position"`
	Inputs   []string       `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs  []string       `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// HasPort reports whether the node declares the named port in the given
// direction.
func (n Node) HasPort(port string, dir PortDirection) bool {
	names := n.Outputs
	if dir == DirectionInput {
		names = n.Inputs
	}
	for _, name := range names {
		if name == port {
			return true
		}
	}
	return false
}

// PortRef identifies one endpoint of a connection. It is a reference, not an
// owned position: the coordinate is resolved on demand from the node.
type PortRef struct {
	NodeID string `json:"node" yaml:"node"`
	Port   string `json:"port" yaml:"port"`
}

// PortLocation is a port resolved to a canvas coordinate. Instances live for
// one index-rebuild cycle and are never persisted.
type PortLocation struct {
	NodeID    string
	Port      string
	Direction PortDirection
	X         float64
	Y         float64
}

// PortResolver maps a declared port to its canvas coordinate. Layout belongs
// to the rendering layer, so the resolver is injected wherever ports need
// positions.
type PortResolver func(node Node, port string, dir PortDirection) Point
