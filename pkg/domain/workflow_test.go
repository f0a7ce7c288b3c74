package domain_test

import (
	"math"
	"testing"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoNodeWorkflow() *domain.Workflow {
	wf := domain.NewWorkflow("wf-1", "test")
	wf.AddNode(domain.Node{
		ID:       "a",
		Type:     "trigger",
		Position: domain.Point{X: 0, Y: 0},
		Outputs:  []string{"main"},
	})
	wf.AddNode(domain.Node{
		ID:       "b",
		Type:     "action",
		Position: domain.Point{X: 300, Y: 120},
		Inputs:   []string{"main"},
		Outputs:  []string{"main", "error"},
	})
	return wf
}

func TestConnect(t *testing.T) {
	wf := twoNodeWorkflow()

	conn, err := wf.Connect(
		domain.PortRef{NodeID: "a", Port: "main"},
		domain.PortRef{NodeID: "b", Port: "main"},
	)
	require.NoError(t, err)
	assert.NotEmpty(t, conn.ID)
	assert.Len(t, wf.Connections, 1)

	t.Run("unknown node", func(t *testing.T) {
		_, err := wf.Connect(
			domain.PortRef{NodeID: "missing", Port: "main"},
			domain.PortRef{NodeID: "b", Port: "main"},
		)
		assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	})

	t.Run("undeclared port", func(t *testing.T) {
		_, err := wf.Connect(
			domain.PortRef{NodeID: "a", Port: "nope"},
			domain.PortRef{NodeID: "b", Port: "main"},
		)
		assert.ErrorIs(t, err, domain.ErrUnknownPort)
	})

	t.Run("direction matters", func(t *testing.T) {
		// "error" is an output of b, not an input.
		_, err := wf.Connect(
			domain.PortRef{NodeID: "a", Port: "main"},
			domain.PortRef{NodeID: "b", Port: "error"},
		)
		assert.ErrorIs(t, err, domain.ErrUnknownPort)
	})
}

func TestRemoveNodeCascades(t *testing.T) {
	wf := twoNodeWorkflow()
	_, err := wf.Connect(
		domain.PortRef{NodeID: "a", Port: "main"},
		domain.PortRef{NodeID: "b", Port: "main"},
	)
	require.NoError(t, err)

	require.NoError(t, wf.RemoveNode("a"))

	assert.Len(t, wf.Nodes, 1)
	assert.Empty(t, wf.Connections, "connections referencing a removed node must be cascade-deleted")

	err = wf.RemoveNode("a")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestMoveNode(t *testing.T) {
	wf := twoNodeWorkflow()

	require.NoError(t, wf.MoveNode("a", domain.Point{X: 42, Y: -7}))
	n, ok := wf.Node("a")
	require.True(t, ok)
	assert.Equal(t, domain.Point{X: 42, Y: -7}, n.Position)

	assert.ErrorIs(t, wf.MoveNode("zzz", domain.Point{}), domain.ErrNodeNotFound)
}

func TestSnapshotDeterministic(t *testing.T) {
	a := twoNodeWorkflow()
	b := twoNodeWorkflow()

	s1, err := a.Snapshot()
	require.NoError(t, err)
	s2, err := b.Snapshot()
	require.NoError(t, err)

	assert.Equal(t, string(s1), string(s2), "equal workflows must produce byte-equal snapshots")
}

func TestValidate(t *testing.T) {
	t.Run("clean", func(t *testing.T) {
		wf := twoNodeWorkflow()
		_, err := wf.Connect(
			domain.PortRef{NodeID: "a", Port: "main"},
			domain.PortRef{NodeID: "b", Port: "main"},
		)
		require.NoError(t, err)
		assert.NoError(t, wf.Validate())
	})

	t.Run("dangling endpoint", func(t *testing.T) {
		wf := twoNodeWorkflow()
		wf.Connections = append(wf.Connections, domain.Connection{
			ID:   "c1",
			From: domain.PortRef{NodeID: "ghost", Port: "main"},
			To:   domain.PortRef{NodeID: "b", Port: "main"},
		})
		assert.ErrorIs(t, wf.Validate(), domain.ErrNodeNotFound)
	})

	t.Run("duplicate ids", func(t *testing.T) {
		wf := twoNodeWorkflow()
		wf.AddNode(domain.Node{ID: "a", Position: domain.Point{X: 1, Y: 1}})
		assert.Error(t, wf.Validate())
	})

	t.Run("non-finite position", func(t *testing.T) {
		wf := twoNodeWorkflow()
		require.NoError(t, wf.MoveNode("a", domain.Point{X: math.NaN(), Y: 0}))
		assert.Error(t, wf.Validate())
	})
}

func TestCloneIsolation(t *testing.T) {
	wf := twoNodeWorkflow()
	cp := wf.Clone()

	require.NoError(t, cp.MoveNode("a", domain.Point{X: 999, Y: 999}))

	orig, _ := wf.Node("a")
	assert.Equal(t, domain.Point{X: 0, Y: 0}, orig.Position, "clone must not share node storage")
}
