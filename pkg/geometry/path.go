// Package geometry derives render-ready curve data for connections. It is
// pure math over canvas coordinates: no DOM, no SVG library, just the path
// description and anchor points the rendering layer needs.
package geometry

import (
	"fmt"

	"github.com/aretw0/lattice/pkg/domain"
)

const (
	// controlFactor scales the horizontal distance into the control point
	// offset of the cubic S-curve.
	controlFactor = 0.5

	// MinControlOffset keeps short or right-to-left connections visibly
	// curved instead of collapsing into a straight or self-crossing line.
	MinControlOffset = 40.0

	// HitStrokeWidth is the width of the invisible stroke the renderer must
	// lay along Path for hit testing. It is independent of the visible
	// stroke so thin or dashed lines stay easy to click.
	HitStrokeWidth = 12.0
)

// PathSpec is the computed geometry of one connection.
type PathSpec struct {
	// ControlFrom and ControlTo are the cubic Bezier control points.
	ControlFrom domain.Point
	ControlTo   domain.Point

	// Path is the SVG path description: M from C controlFrom controlTo to.
	Path string

	// Midpoint is the straight-line midpoint of the endpoints, used to anchor
	// the connection toolbar. It is not the curve midpoint; sample PointAt(0.5)
	// for that.
	Midpoint domain.Point
}

// ConnectionPath computes the S-curve between an output port and an input
// port. Control points are offset horizontally by a fraction of the
// horizontal distance, floored at MinControlOffset, which keeps the curve
// well-formed when the target sits left of the source. Non-finite input is
// degraded to a zero-length path rather than letting NaN reach the renderer.
func ConnectionPath(from, to domain.Point) PathSpec {
	if !from.IsFinite() {
		from = domain.Point{}
	}
	if !to.IsFinite() {
		to = from
	}

	dx := to.X - from.X
	offset := dx * controlFactor
	if offset < 0 {
		offset = -offset
	}
	if offset < MinControlOffset {
		offset = MinControlOffset
	}

	controlFrom := domain.Point{X: from.X + offset, Y: from.Y}
	controlTo := domain.Point{X: to.X - offset, Y: to.Y}

	return PathSpec{
		ControlFrom: controlFrom,
		ControlTo:   controlTo,
		Path: fmt.Sprintf("M %v,%v C %v,%v %v,%v %v,%v",
			from.X, from.Y,
			controlFrom.X, controlFrom.Y,
			controlTo.X, controlTo.Y,
			to.X, to.Y),
		Midpoint: domain.Point{X: (from.X + to.X) / 2, Y: (from.Y + to.Y) / 2},
	}
}

// PointAt samples the cubic Bezier of a connection at parameter t in [0, 1].
// The endpoints are recovered from the path relationship: from at t=0, to at
// t=1.
func PointAt(from, to domain.Point, spec PathSpec, t float64) domain.Point {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	u := 1 - t
	b0 := u * u * u
	b1 := 3 * u * u * t
	b2 := 3 * u * t * t
	b3 := t * t * t
	return domain.Point{
		X: b0*from.X + b1*spec.ControlFrom.X + b2*spec.ControlTo.X + b3*to.X,
		Y: b0*from.Y + b1*spec.ControlFrom.Y + b2*spec.ControlTo.Y + b3*to.Y,
	}
}
