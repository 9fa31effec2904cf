package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/paiflow/logger"
	"github.com/kbukum/paiflow/store"
	"github.com/kbukum/paiflow/store/migration"
	"github.com/kbukum/paiflow/store/storetest"
	"github.com/kbukum/paiflow/workflow"
)

func newTestStore(t *testing.T, dsn string) *Store {
	t.Helper()
	s, err := Open(context.Background(), dsn, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, newTestStore(t, ":memory:"))
}

func TestStore_MigrationsAreIdempotent(t *testing.T) {
	s := newTestStore(t, ":memory:")
	require.NoError(t, Migrate(s.DB()))

	v, dirty, err := migration.Version(s.DB(), migrationsFS, "migrations", driver)
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	assert.False(t, dirty)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paiflow.db")
	ctx := context.Background()

	s, err := Open(ctx, path, logger.Nop())
	require.NoError(t, err)
	wf := &workflow.Workflow{Name: "kept"}
	require.NoError(t, s.CreateWorkflow(ctx, wf))
	require.NoError(t, s.Close())

	reopened := newTestStore(t, path)
	got, err := reopened.GetWorkflow(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Name)
}

func TestNew_RegisteredFactory(t *testing.T) {
	s, err := store.New(context.Background(), store.Config{Driver: store.DriverSQLite, DSN: ":memory:"}, logger.Nop())
	require.NoError(t, err)
	defer s.Close()
	assert.Contains(t, store.Drivers(), store.DriverSQLite)
}
