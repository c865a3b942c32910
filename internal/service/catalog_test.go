package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/cinerag/internal/embedding"
	"github.com/user/cinerag/internal/model"
)

func TestCatalog_Add(t *testing.T) {
	ctx := context.Background()
	emb := &stubEmbedder{failOn: "Broken"}
	cat := NewCatalog(emb)

	e, err := cat.Add(ctx, twoMovies()[1])
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, e.Embedding)
	assert.Equal(t, 1, cat.Len())

	_, err = cat.Add(ctx, model.Movie{Title: "Broken", Description: "x"})
	assert.ErrorIs(t, err, errEmbedderDown)
	assert.Equal(t, 1, cat.Len(), "failed add must not change the catalog")
}

func TestCatalog_AddAllIsAtomic(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(&stubEmbedder{failOn: "family"})

	err := cat.AddAll(ctx, twoMovies())
	assert.ErrorIs(t, err, errEmbedderDown)
	assert.Zero(t, cat.Len())

	cat = NewCatalog(&stubEmbedder{})
	require.NoError(t, cat.AddAll(ctx, twoMovies()))
	all := cat.All()
	require.Len(t, all, 2)
	assert.Equal(t, "A", all[0].Movie.Title)
	assert.Equal(t, []float32{1, 0}, all[0].Embedding)
	assert.Equal(t, "B", all[1].Movie.Title)
}

func TestCatalog_RejectsDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(&stubEmbedder{})
	require.NoError(t, cat.AddAll(ctx, twoMovies()))
	require.Equal(t, 2, cat.Dimensions())

	cat.embedder = embedding.NewHashEmbedder(8)
	_, err := cat.Add(ctx, model.Movie{Title: "C", Description: "a heist"})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	err = cat.AddAll(ctx, []model.Movie{{Title: "D", Description: "a duel"}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, 2, cat.Len())
	assert.True(t, cat.Uniform())

	require.NoError(t, cat.Reembed(ctx))
	assert.Equal(t, 8, cat.Dimensions())
	assert.True(t, cat.Uniform())
	assert.Equal(t, "A", cat.All()[0].Movie.Title)
}

func TestCatalog_ReembedFailureKeepsEntries(t *testing.T) {
	ctx := context.Background()
	emb := &stubEmbedder{}
	cat := NewCatalog(emb)
	require.NoError(t, cat.AddAll(ctx, twoMovies()))

	emb.failOn = "family"
	assert.ErrorIs(t, cat.Reembed(ctx), errEmbedderDown)
	assert.Equal(t, []float32{1, 0}, cat.All()[0].Embedding)
	assert.Equal(t, 2, cat.Len())
}

func TestCatalog_GenresOf(t *testing.T) {
	cat := NewCatalog(&stubEmbedder{})
	cat.Restore([]model.CatalogEntry{
		entry("Dune", "Sci-Fi/Adventure", 1, 0),
		entry("Dune", "Adventure/Drama", 1, 0),
		entry("Encanto", "Animation", 0, 1),
	})

	assert.Equal(t, []string{"Sci-Fi", "Adventure", "Drama"}, cat.GenresOf("Dune"))
	assert.Empty(t, cat.GenresOf("Missing"))
	assert.True(t, cat.Contains("Encanto"))
	assert.False(t, cat.Contains("encanto"))
}

func TestCatalog_AllReturnsCopy(t *testing.T) {
	cat := NewCatalog(&stubEmbedder{})
	cat.Restore([]model.CatalogEntry{entry("A", "Action", 1, 0)})

	all := cat.All()
	all[0].Movie.Title = "changed"
	assert.Equal(t, "A", cat.All()[0].Movie.Title)
}
