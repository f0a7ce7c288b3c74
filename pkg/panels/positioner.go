// Package panels keeps floating editor panels inside the viewport. Each
// Panel owns its own state; there are no process-wide registries, so two
// editors on one page cannot interfere with each other.
package panels

import (
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/geometry"
)

// Panel is one floating panel instance (node catalog, chat, history, ...).
type Panel struct {
	Width  float64
	Height float64
	Margin float64

	state domain.PanelState
}

// New creates a visible, unpinned panel at the given position.
func New(width, height, margin float64, at domain.Point) *Panel {
	return &Panel{
		Width:  width,
		Height: height,
		Margin: margin,
		state:  domain.PanelState{Position: at, Visible: true},
	}
}

// State returns a copy of the panel's bookkeeping.
func (p *Panel) State() domain.PanelState {
	return p.state
}

// MoveTo records a drag, clamped so the panel stays on screen.
func (p *Panel) MoveTo(pos domain.Point, vp geometry.Viewport) {
	p.state.Position = p.clamp(pos, vp)
}

// Pin docks the panel: its offset from the right viewport edge is captured so
// later resizes keep it glued there.
func (p *Panel) Pin(vp geometry.Viewport) {
	p.state.Pinned = true
	p.state.AnchorRight = vp.Width - p.state.Position.X
}

// Unpin releases the panel at its current position.
func (p *Panel) Unpin() {
	p.state.Pinned = false
	p.state.AnchorRight = 0
}

// SetVisible shows or hides the panel.
func (p *Panel) SetVisible(visible bool) {
	p.state.Visible = visible
}

// Reposition is invoked on viewport resize. Pinned panels follow the right
// edge at their captured offset; free panels are only pulled back on screen
// when the resize pushed them out.
func (p *Panel) Reposition(vp geometry.Viewport) {
	pos := p.state.Position
	if p.state.Pinned {
		pos.X = vp.Width - p.state.AnchorRight
	}
	p.state.Position = p.clamp(pos, vp)
}

func (p *Panel) clamp(pos domain.Point, vp geometry.Viewport) domain.Point {
	maxX := vp.Width - p.Width - p.Margin
	maxY := vp.Height - p.Height - p.Margin

	if pos.X > maxX {
		pos.X = maxX
	}
	if pos.X < p.Margin {
		pos.X = p.Margin
	}
	if pos.Y > maxY {
		pos.Y = maxY
	}
	if pos.Y < p.Margin {
		pos.Y = p.Margin
	}
	return pos
}
