package geometry

import "github.com/aretw0/lattice/pkg/domain"

// Viewport is the visible screen area in screen-space units.
type Viewport struct {
	Width  float64
	Height float64
}

// Toolbar describes the floating edit toolbar that anchors at a connection
// midpoint.
type Toolbar struct {
	Width  float64
	Height float64
	Margin float64
}

// ClampToolbarAnchor pulls an anchor point back inside the viewport so the
// toolbar centered on it stays fully visible: x into
// [w/2, viewport-w/2], y into [h+margin, viewport-h-margin]. When the
// viewport is smaller than the toolbar the lower bound wins, keeping the
// top-left corner reachable.
func ClampToolbarAnchor(anchor domain.Point, vp Viewport, tb Toolbar) domain.Point {
	minX := tb.Width / 2
	maxX := vp.Width - tb.Width/2
	minY := tb.Height + tb.Margin
	maxY := vp.Height - tb.Height - tb.Margin

	x := anchor.X
	if x > maxX {
		x = maxX
	}
	if x < minX {
		x = minX
	}

	y := anchor.Y
	if y > maxY {
		y = maxY
	}
	if y < minY {
		y = minY
	}

	return domain.Point{X: x, Y: y}
}
