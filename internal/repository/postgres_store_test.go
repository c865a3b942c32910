package repository

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/cinerag/internal/model"
)

// setupPostgres 需要设置 CINERAG_TEST_DATABASE_URL，指向已安装 pgvector 的数据库
func setupPostgres(t *testing.T) *PostgresStore {
	t.Helper()

	dsn := os.Getenv("CINERAG_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("CINERAG_TEST_DATABASE_URL not set, skipping postgres tests")
	}

	db, err := InitDB(dsn)
	require.NoError(t, err)

	store := NewPostgresStore(db)
	require.NoError(t, store.Migrate())

	for _, table := range []string{"cinerag_movies", "cinerag_profiles", "cinerag_interactions"} {
		require.NoError(t, db.Exec("DELETE FROM "+table).Error)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return store
}

func TestPostgresStore_Missing(t *testing.T) {
	store := setupPostgres(t)
	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	store := setupPostgres(t)
	ctx := context.Background()

	want := sampleSnapshot()
	require.NoError(t, store.Save(ctx, want))
	// 再次保存同样内容，验证整体覆盖
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, want.Catalog, got.Catalog)
	for i := range want.Embeddings {
		assert.InDeltaSlice(t, want.Embeddings[i], got.Embeddings[i], 1e-6)
	}
	assert.Equal(t, want.Profile.Liked, got.Profile.Liked)
	assert.Equal(t, want.Profile.Disliked, got.Profile.Disliked)
	assert.Equal(t, want.Profile.PreferredGenres, got.Profile.PreferredGenres)
	require.Len(t, got.Profile.History, len(want.Profile.History))
	for i, it := range want.Profile.History {
		assert.Equal(t, it.ID, got.Profile.History[i].ID)
		assert.Equal(t, it.Action, got.Profile.History[i].Action)
		assert.True(t, it.Timestamp.Equal(got.Profile.History[i].Timestamp))
	}
}

func TestPostgresStore_RejectsMismatchedSnapshot(t *testing.T) {
	store := setupPostgres(t)
	snap := &model.Snapshot{
		Version:    model.SnapshotVersion,
		Catalog:    []model.Movie{{Title: "A", Description: "x"}},
		Embeddings: [][]float32{},
	}
	assert.ErrorIs(t, store.Save(context.Background(), snap), ErrCorruptSnapshot)
}
