package geometry

import "github.com/aretw0/lattice/pkg/domain"

// Default box layout used when the host does not inject its own resolver:
// inputs stacked down the left edge, outputs down the right edge.
const (
	NodeBoxWidth = 180.0
	portTopInset = 24.0
	portSpacing  = 24.0
)

// BoxResolver resolves port coordinates against the default box layout. The
// rendering layer normally replaces this with its own measurement-based
// resolver; the headless tools (CLI, HTTP, MCP) use this one.
func BoxResolver(node domain.Node, port string, dir domain.PortDirection) domain.Point {
	names := node.Inputs
	x := node.Position.X
	if dir == domain.DirectionOutput {
		names = node.Outputs
		x = node.Position.X + NodeBoxWidth
	}
	for i, name := range names {
		if name == port {
			return domain.Point{X: x, Y: node.Position.Y + portTopInset + float64(i)*portSpacing}
		}
	}
	// Undeclared port: fall back to the node origin instead of guessing a slot.
	return node.Position
}
