package index

import (
	"math"

	"github.com/aretw0/lattice/pkg/domain"
)

// DefaultCellSize is a reasonable grid pitch when the caller has no opinion:
// on the same order as typical snap radii, so a 3x3 neighborhood covers the
// whole search disc.
const DefaultCellSize = 100

type cellKey struct {
	Col int
	Row int
}

// Spatial buckets every resolved port position into a uniform grid so that
// nearest-port queries touch only the 3x3 neighborhood of the query cell
// instead of scanning every port on the canvas. A flat hash map keyed by
// integer cell coordinates is deliberate: query radii are uniform, so a tree
// buys nothing over constant-time bucket lookup.
//
// The index is immutable after Build. Rebuild it on node membership, port
// list, or position changes; never per pointer move.
type Spatial struct {
	cellSize float64
	cells    map[cellKey][]domain.PortLocation
}

// BuildSpatial indexes every input and output port of every node. Ports whose
// resolved position is non-finite are skipped so a layout bug upstream cannot
// poison the index. cellSize values below 1 are clamped to 1.
func BuildSpatial(nodes []domain.Node, resolve domain.PortResolver, cellSize float64) *Spatial {
	if cellSize < 1 || math.IsNaN(cellSize) {
		cellSize = 1
	}
	idx := &Spatial{
		cellSize: cellSize,
		cells:    make(map[cellKey][]domain.PortLocation),
	}
	for _, node := range nodes {
		idx.addPorts(node, node.Inputs, domain.DirectionInput, resolve)
		idx.addPorts(node, node.Outputs, domain.DirectionOutput, resolve)
	}
	return idx
}

func (s *Spatial) addPorts(node domain.Node, ports []string, dir domain.PortDirection, resolve domain.PortResolver) {
	for _, port := range ports {
		pos := resolve(node, port, dir)
		if !pos.IsFinite() {
			continue
		}
		key := s.keyFor(pos.X, pos.Y)
		s.cells[key] = append(s.cells[key], domain.PortLocation{
			NodeID:    node.ID,
			Port:      port,
			Direction: dir,
			X:         pos.X,
			Y:         pos.Y,
		})
	}
}

func (s *Spatial) keyFor(x, y float64) cellKey {
	return cellKey{
		Col: int(math.Floor(x / s.cellSize)),
		Row: int(math.Floor(y / s.cellSize)),
	}
}

// Len returns the number of indexed ports.
func (s *Spatial) Len() int {
	total := 0
	for _, bucket := range s.cells {
		total += len(bucket)
	}
	return total
}

// Nearest returns the indexed port closest to (x, y) whose distance is
// strictly less than maxDistance. Only the query cell and its 8 neighbors are
// examined, so maxDistance should not exceed the cell size by much or distant
// candidates become unreachable. Ties keep the first candidate encountered;
// callers must not rely on tie order.
func (s *Spatial) Nearest(x, y, maxDistance float64) (domain.PortLocation, bool) {
	if maxDistance <= 0 || len(s.cells) == 0 {
		return domain.PortLocation{}, false
	}
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
		return domain.PortLocation{}, false
	}

	center := s.keyFor(x, y)
	best := domain.PortLocation{}
	bestDist := maxDistance
	found := false

	for dc := -1; dc <= 1; dc++ {
		for dr := -1; dr <= 1; dr++ {
			key := cellKey{Col: center.Col + dc, Row: center.Row + dr}
			for _, loc := range s.cells[key] {
				d := math.Hypot(loc.X-x, loc.Y-y)
				if d < bestDist {
					best = loc
					bestDist = d
					found = true
				}
			}
		}
	}
	return best, found
}
