package domain

// PanelState is the bookkeeping for one floating panel. It is owned by the
// panel instance that mutates it (drag, pin, hide) and is not part of
// workflow persistence.
type PanelState struct {
	Position Point `json:"position"`
	Pinned   bool  `json:"pinned"`
	Visible  bool  `json:"visible"`

	// AnchorRight is the pinned panel's offset from the right viewport edge,
	// captured when the panel is pinned so resizes keep it docked.
	AnchorRight float64 `json:"anchor_right,omitempty"`
}
