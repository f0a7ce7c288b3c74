package ports

import (
	"context"

	"github.com/aretw0/lattice/pkg/domain"
)

// WorkflowStore is the persistence boundary of the editor. The autosave
// coordinator funnels every write through Save; the editor never assumes
// anything about the transport behind it.
type WorkflowStore interface {
	// Save persists the workflow under its ID, replacing any previous version.
	Save(ctx context.Context, wf *domain.Workflow) error

	// Load retrieves a workflow by ID.
	// Returns domain.ErrWorkflowNotFound if it does not exist.
	Load(ctx context.Context, id string) (*domain.Workflow, error)

	// Delete removes a workflow. Deleting a missing workflow is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of stored workflows.
	List(ctx context.Context) ([]string, error)
}
