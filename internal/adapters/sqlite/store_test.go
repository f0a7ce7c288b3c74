package sqlite_test

import (
	"path/filepath"
	"testing"

	"github.com/aretw0/lattice/internal/adapters/sqlite"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_Contract(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "lattice.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ports.RunWorkflowStoreContract(t, store)
}
