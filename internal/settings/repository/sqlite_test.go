package repository

import (
	"context"
	"path/filepath"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bim-schedules/internal/settings/models"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := New(db)
	require.NoError(t, repo.Init("../../../migrations/001_init_settings.sql"))
	return repo
}

func TestRepositoryCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	table := &models.NamedTable{
		ID:          "t1",
		Name:        "main",
		DisplayName: "Main",
		Config:      []byte(`{"id":"t1","parentColumns":[]}`),
	}
	require.NoError(t, repo.Create(ctx, table))
	assert.NotZero(t, table.UpdatedAt)

	got, err := repo.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "main", got.Name)
	assert.JSONEq(t, `{"id":"t1","parentColumns":[]}`, string(got.Config))

	table.DisplayName = "Renamed"
	table.Config = []byte(`{"id":"t1","parentColumns":[],"childColumns":[]}`)
	require.NoError(t, repo.Update(ctx, table))

	got, err = repo.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.DisplayName)

	tables, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tables, 1)

	require.NoError(t, repo.Delete(ctx, "t1"))
	_, err = repo.Get(ctx, "t1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepositoryNotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.Update(ctx, &models.NamedTable{ID: "missing", Config: []byte(`{}`)})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "missing"), ErrNotFound)
}

func TestRepositoryListOrderedByName(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, repo.Create(ctx, &models.NamedTable{
			ID:     name,
			Name:   name,
			Config: []byte(`{}`),
		}))
	}

	tables, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 3)
	assert.Equal(t, "alpha", tables[0].Name)
	assert.Equal(t, "mid", tables[1].Name)
	assert.Equal(t, "zeta", tables[2].Name)
}
