// Package index holds the derived lookup structures of the canvas: an
// ID-keyed node map and a uniform-grid spatial index over port positions.
// Both are pure derivations of the current node collection and must be
// rebuilt whenever that collection changes; consumers must not cache them
// across a mutation.
package index

import "github.com/aretw0/lattice/pkg/domain"

// NodeLookup builds an ID-keyed map over the node collection for O(1)
// retrieval. Duplicate IDs are a caller precondition violation; the last
// occurrence wins.
func NodeLookup(nodes []domain.Node) map[string]domain.Node {
	m := make(map[string]domain.Node, len(nodes))
	for _, n := range nodes {
		m[n.ID] = n
	}
	return m
}
