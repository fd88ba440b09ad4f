package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Astemirdum/library-frontend/internal/session"
	"github.com/Astemirdum/library-frontend/libctl/migrations"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	repo, err := NewSQLite(path, migrations.MigrationFiles, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = repo.Load(ctx, session.Key)
	require.ErrorIs(t, err, session.ErrNoValue)

	require.NoError(t, repo.Save(ctx, session.Key, []byte(`{"id":1}`)))
	require.NoError(t, repo.Save(ctx, session.Key, []byte(`{"id":2}`)))
	v, err := repo.Load(ctx, session.Key)
	require.NoError(t, err)
	require.Equal(t, `{"id":2}`, string(v))
	require.NoError(t, repo.Close())

	// a second process sees the same identity
	repo, err = NewSQLite(path, migrations.MigrationFiles, zap.NewNop())
	require.NoError(t, err)
	defer repo.Close()
	v, err = repo.Load(ctx, session.Key)
	require.NoError(t, err)
	require.Equal(t, `{"id":2}`, string(v))

	require.NoError(t, repo.Delete(ctx, session.Key))
	require.NoError(t, repo.Delete(ctx, session.Key))
	_, err = repo.Load(ctx, session.Key)
	require.ErrorIs(t, err, session.ErrNoValue)
}
