package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunWorkflowStoreContract verifies that a WorkflowStore implementation
// adheres to the interface contract. Every adapter runs this suite.
func RunWorkflowStoreContract(t *testing.T, store WorkflowStore) {
	ctx := context.Background()
	id := "contract-test-" + time.Now().Format("20060102150405")

	sample := func(id string) *domain.Workflow {
		wf := domain.NewWorkflow(id, "contract sample")
		wf.AddNode(domain.Node{
			ID:       "a",
			Type:     "trigger",
			Position: domain.Point{X: 10, Y: 20},
			Outputs:  []string{"main"},
		})
		wf.AddNode(domain.Node{
			ID:       "b",
			Type:     "action",
			Position: domain.Point{X: 400, Y: 60},
			Inputs:   []string{"main"},
			Parameters: map[string]any{"url": "https://example.com"},
		})
		_, err := wf.Connect(
			domain.PortRef{NodeID: "a", Port: "main"},
			domain.PortRef{NodeID: "b", Port: "main"},
		)
		require.NoError(t, err)
		return wf
	}

	t.Run("Save and Load", func(t *testing.T) {
		wf := sample(id)
		require.NoError(t, store.Save(ctx, wf))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, wf.ID, loaded.ID)
		assert.Len(t, loaded.Nodes, 2)
		assert.Len(t, loaded.Connections, 1)

		n, ok := loaded.Node("a")
		require.True(t, ok)
		assert.Equal(t, domain.Point{X: 10, Y: 20}, n.Position)
		assert.Equal(t, []string{"main"}, n.Outputs)
	})

	t.Run("Save isolates caller mutations", func(t *testing.T) {
		wf := sample(id)
		require.NoError(t, store.Save(ctx, wf))

		// Mutating after Save must not affect what Load returns.
		require.NoError(t, wf.MoveNode("a", domain.Point{X: -999, Y: -999}))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		n, ok := loaded.Node("a")
		require.True(t, ok)
		assert.Equal(t, domain.Point{X: 10, Y: 20}, n.Position)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sample(id)))
		require.NoError(t, store.Delete(ctx, id))

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)

		assert.NoError(t, store.Delete(ctx, id), "deleting a missing workflow is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := id + "-1"
		id2 := id + "-2"
		require.NoError(t, store.Save(ctx, sample(id1)))
		require.NoError(t, store.Save(ctx, sample(id2)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
