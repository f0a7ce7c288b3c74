// Package lattice is the headless core of a visual workflow editor: a node
// and connection collection plus the derived structures that make a canvas
// usable and safe to persist.
//
// The Editor ties four subsystems together:
//
//   - an ID-keyed node lookup and a grid-bucketed spatial port index
//     (pkg/index), rebuilt on every structural change so pointer-move
//     queries stay O(1);
//   - connection geometry (pkg/geometry), computing Bezier paths, midpoints
//     and toolbar anchor clamping as pure data for any renderer;
//   - a debounced, race-safe autosave coordinator (pkg/autosave) that
//     funnels changes into a ports.WorkflowStore;
//   - floating panel positioning (pkg/panels).
//
// Rendering, theming and catalog UI are deliberately out of scope; the core
// exchanges plain data with whatever layer draws it.
package lattice
