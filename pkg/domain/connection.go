package domain

import "github.com/google/uuid"

// ArrowKind selects the marker drawn at a connection end.
type ArrowKind string

const (
	ArrowNone    ArrowKind = "none"
	ArrowHead    ArrowKind = "arrow"
	ArrowDiamond ArrowKind = "diamond"
)

// ConnectionStyle holds presentation attributes. The renderer owns what they
// look like; the editor only stores and round-trips them.
type ConnectionStyle struct {
	StrokeWidth float64   `json:"stroke_width,omitempty" yaml:"stroke_width,omitempty"`
	Dash        []float64 `json:"dash,omitempty" yaml:"dash,omitempty"`
	Color       string    `json:"color,omitempty" yaml:"color,omitempty"`
	ArrowStart  ArrowKind `json:"arrow_start,omitempty" yaml:"arrow_start,omitempty"`
	ArrowEnd    ArrowKind `json:"arrow_end,omitempty" yaml:"arrow_end,omitempty"`
	Label       string    `json:"label,omitempty" yaml:"label,omitempty"`
}

// Connection joins an output port to an input port. Endpoints are references;
// deleting either node cascade-deletes the connection (see Workflow.RemoveNode).
type Connection struct {
	ID    string          `json:"id" yaml:"id"`
	From  PortRef         `json:"from" yaml:"from"`
	To    PortRef         `json:"to" yaml:"to"`
	Style ConnectionStyle `json:"style,omitempty" yaml:"style,omitempty"`
}

// NewConnection creates a connection with a generated ID.
func NewConnection(from, to PortRef) Connection {
	return Connection{
		ID:   uuid.NewString(),
		From: from,
		To:   to,
		Style: ConnectionStyle{
			ArrowEnd: ArrowHead,
		},
	}
}
