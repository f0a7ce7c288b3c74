package index_test

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gridResolver spreads a node's ports vertically below its position. Good
// enough for index tests; real layout is injected by the renderer.
func gridResolver(node domain.Node, port string, dir domain.PortDirection) domain.Point {
	names := node.Outputs
	dx := 160.0
	if dir == domain.DirectionInput {
		names = node.Inputs
		dx = 0
	}
	row := 0
	for i, name := range names {
		if name == port {
			row = i
			break
		}
	}
	return domain.Point{X: node.Position.X + dx, Y: node.Position.Y + float64(row)*24}
}

func portNode(id string, x, y float64) domain.Node {
	return domain.Node{
		ID:       id,
		Position: domain.Point{X: x, Y: y},
		Inputs:   []string{"main"},
		Outputs:  []string{"main", "error"},
	}
}

func TestNearestSinglePort(t *testing.T) {
	// One port at (50, 50), cell size 100.
	node := domain.Node{ID: "n1", Position: domain.Point{X: 50, Y: 50}, Outputs: []string{"main"}}
	resolve := func(n domain.Node, port string, dir domain.PortDirection) domain.Point {
		return n.Position
	}
	idx := index.BuildSpatial([]domain.Node{node}, resolve, 100)

	loc, ok := idx.Nearest(60, 55, 20)
	require.True(t, ok, "port at distance ~11.2 must be inside radius 20")
	assert.Equal(t, "n1", loc.NodeID)
	assert.Equal(t, "main", loc.Port)
	assert.Equal(t, domain.DirectionOutput, loc.Direction)

	_, ok = idx.Nearest(500, 500, 50)
	assert.False(t, ok, "query far outside the indexed area must miss")
}

func TestNearestEmptyIndex(t *testing.T) {
	idx := index.BuildSpatial(nil, gridResolver, 100)
	_, ok := idx.Nearest(0, 0, 1000)
	assert.False(t, ok)
	assert.Zero(t, idx.Len())
}

func TestNearestRejectsBadQueries(t *testing.T) {
	idx := index.BuildSpatial([]domain.Node{portNode("a", 10, 10)}, gridResolver, 50)

	_, ok := idx.Nearest(10, 10, 0)
	assert.False(t, ok, "maxDistance 0 never matches")

	_, ok = idx.Nearest(10, 10, -5)
	assert.False(t, ok, "negative maxDistance never matches")

	_, ok = idx.Nearest(math.NaN(), 10, 50)
	assert.False(t, ok, "non-finite query coordinates never match")
}

func TestNearestDistanceIsStrict(t *testing.T) {
	node := domain.Node{ID: "n", Position: domain.Point{X: 0, Y: 0}, Outputs: []string{"main"}}
	resolve := func(n domain.Node, _ string, _ domain.PortDirection) domain.Point { return n.Position }
	idx := index.BuildSpatial([]domain.Node{node}, resolve, 100)

	_, ok := idx.Nearest(10, 0, 10)
	assert.False(t, ok, "distance exactly equal to maxDistance is excluded")

	_, ok = idx.Nearest(10, 0, 10.0001)
	assert.True(t, ok)
}

func TestBuildExcludesNonFinitePorts(t *testing.T) {
	bad := domain.Node{ID: "bad", Position: domain.Point{X: math.Inf(1), Y: 0}, Outputs: []string{"main"}}
	good := domain.Node{ID: "good", Position: domain.Point{X: 5, Y: 5}, Outputs: []string{"main"}}
	resolve := func(n domain.Node, _ string, _ domain.PortDirection) domain.Point { return n.Position }

	idx := index.BuildSpatial([]domain.Node{bad, good}, resolve, 100)
	assert.Equal(t, 1, idx.Len())

	loc, ok := idx.Nearest(0, 0, 50)
	require.True(t, ok)
	assert.Equal(t, "good", loc.NodeID)
}

// bruteForceNearest is the O(n) reference implementation the grid must agree
// with.
func bruteForceNearest(locs []domain.PortLocation, x, y, maxDistance float64) (domain.PortLocation, bool) {
	best := domain.PortLocation{}
	bestDist := maxDistance
	found := false
	for _, loc := range locs {
		d := math.Hypot(loc.X-x, loc.Y-y)
		if d < bestDist {
			best = loc
			bestDist = d
			found = true
		}
	}
	return best, found
}

func TestNearestMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, cellSize := range []float64{1, 25, 64, 100, 333} {
		t.Run(fmt.Sprintf("cell=%v", cellSize), func(t *testing.T) {
			var nodes []domain.Node
			for i := 0; i < 120; i++ {
				nodes = append(nodes, portNode(
					fmt.Sprintf("n%03d", i),
					rng.Float64()*2000-500,
					rng.Float64()*2000-500,
				))
			}
			idx := index.BuildSpatial(nodes, gridResolver, cellSize)

			// Reference set: every resolved port, same resolver.
			var all []domain.PortLocation
			for _, n := range nodes {
				for _, p := range n.Inputs {
					pos := gridResolver(n, p, domain.DirectionInput)
					all = append(all, domain.PortLocation{NodeID: n.ID, Port: p, Direction: domain.DirectionInput, X: pos.X, Y: pos.Y})
				}
				for _, p := range n.Outputs {
					pos := gridResolver(n, p, domain.DirectionOutput)
					all = append(all, domain.PortLocation{NodeID: n.ID, Port: p, Direction: domain.DirectionOutput, X: pos.X, Y: pos.Y})
				}
			}
			require.Equal(t, len(all), idx.Len())

			for q := 0; q < 300; q++ {
				x := rng.Float64()*2200 - 600
				y := rng.Float64()*2200 - 600
				// Radius must fit the 3x3 neighborhood for the grid to be exhaustive.
				maxDist := rng.Float64() * cellSize

				got, gotOK := idx.Nearest(x, y, maxDist)
				want, wantOK := bruteForceNearest(all, x, y, maxDist)

				require.Equal(t, wantOK, gotOK, "query (%v, %v) r=%v", x, y, maxDist)
				if wantOK {
					// Positions are random, so distances are distinct in practice;
					// compare by distance to stay robust against ties anyway.
					gd := math.Hypot(got.X-x, got.Y-y)
					wd := math.Hypot(want.X-x, want.Y-y)
					assert.InDelta(t, wd, gd, 1e-9)
				}
			}
		})
	}
}

func TestNodeLookup(t *testing.T) {
	nodes := []domain.Node{
		{ID: "a", Name: "first"},
		{ID: "b", Name: "second"},
		{ID: "a", Name: "shadowed"},
	}

	m := index.NodeLookup(nodes)
	assert.Len(t, m, 2)
	assert.Equal(t, "second", m["b"].Name)
	assert.Equal(t, "shadowed", m["a"].Name, "last write wins on duplicate ids")

	assert.Empty(t, index.NodeLookup(nil))
}
