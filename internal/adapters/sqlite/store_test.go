package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fermata-io/purgatory/internal/adapters/sqlite"
	"github.com/fermata-io/purgatory/pkg/domain"
	"github.com/fermata-io/purgatory/pkg/ports"
	"github.com/fermata-io/purgatory/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_Contract(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "purgatory.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ports.RunBackendContract(t, store)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "purgatory.db")

	store, err := sqlite.New(path)
	require.NoError(t, err)

	doc := wire.NewDocument()
	doc.Tokens["sem-sql00001"] = domain.NewToken(domain.ReasonResourceDecision, "scale up?",
		domain.WithID("sem-sql00001"))
	require.NoError(t, store.Save(ctx, doc))
	require.NoError(t, store.Close())

	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	loaded, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Contains(t, loaded.Tokens, "sem-sql00001")
}
