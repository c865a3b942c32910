package shell

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/cinerag/internal/embedding"
	"github.com/user/cinerag/internal/model"
	"github.com/user/cinerag/internal/service"
)

func newSession(t *testing.T) *service.Session {
	t.Helper()
	s, err := service.Open(context.Background(), service.Options{
		Embedder:   embedding.NewHashEmbedder(64),
		SeedMovies: service.DefaultMovies()[:6],
	})
	require.NoError(t, err)
	return s
}

func run(t *testing.T, session *service.Session, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	require.NoError(t, New(session, in, &out).Run(context.Background()))
	return out.String()
}

func TestShell_SearchCollectsFeedback(t *testing.T) {
	session := newSession(t)

	out := run(t, session, "1", "spy mission with lethal technology", "l", "x", "s", "", "d", "s", "6")

	assert.Contains(t, out, "Found 5 movies")
	assert.Contains(t, out, "Please enter 'l', 'd', or 's'")
	assert.Contains(t, out, "Thanks for using CineRAG!")

	profile := session.Profile()
	assert.Len(t, profile.Liked, 1)
	assert.Len(t, profile.Disliked, 1)
	assert.Len(t, profile.History, 2)
}

func TestShell_EmptyQuery(t *testing.T) {
	out := run(t, newSession(t), "1", "   ", "6")
	assert.Contains(t, out, "Please enter a search query!")
}

func TestShell_RecommendNeedsLikes(t *testing.T) {
	session := newSession(t)

	out := run(t, session, "2", "6")
	assert.Contains(t, out, "Not enough data")

	require.NoError(t, session.RecordFeedback(context.Background(), "Dune", model.FeedbackLike))
	out = run(t, session, "2", "6")
	assert.Contains(t, out, "Movies you might love")
	// 已喜欢的电影不出现在推荐列表中
	assert.NotContains(t, out, "Dune (2021)")
}

func TestShell_BrowseShowsStatus(t *testing.T) {
	session := newSession(t)
	ctx := context.Background()
	require.NoError(t, session.RecordFeedback(ctx, "Encanto", model.FeedbackLike))
	require.NoError(t, session.RecordFeedback(ctx, "Dune", model.FeedbackDislike))

	out := run(t, session, "3", "6")
	assert.Contains(t, out, "Catalog (6 movies)")
	assert.Contains(t, out, "Encanto (2021) - Animation/Family - ⭐7.3/10 👍")
	assert.Contains(t, out, "Dune (2021) - Sci-Fi/Adventure - ⭐8.0/10 👎")
	assert.Contains(t, out, "...")
}

func TestShell_AddMovie(t *testing.T) {
	session := newSession(t)

	out := run(t, session, "4", "Arrival [4K]", "2016", "Sci-Fi/Drama", "great", "A linguist talks to aliens", "6")
	assert.Contains(t, out, "Using default rating: 7.0")
	assert.Contains(t, out, "Added Arrival to the catalog!")

	movies := session.Movies()
	require.Len(t, movies, 7)
	assert.Equal(t, "Arrival", movies[6].Title)
	assert.Equal(t, 7.0, movies[6].Rating)

	out = run(t, session, "4", "No Description", "2020", "Drama", "5", "", "6")
	assert.Contains(t, out, "Title and description are required!")
	assert.Len(t, session.Movies(), 7)
}

func TestShell_Analytics(t *testing.T) {
	session := newSession(t)
	require.NoError(t, session.RecordFeedback(context.Background(), "The Batman", model.FeedbackLike))

	out := run(t, session, "5", "6")
	assert.Contains(t, out, "Movies in catalog: 6")
	assert.Contains(t, out, "Movies you liked: 1")
	assert.Contains(t, out, "  • The Batman")
	assert.Contains(t, out, "Your top genres: Action, Crime")
	assert.NotContains(t, out, "Recent like rate")
}

func TestShell_InvalidChoiceAndEOF(t *testing.T) {
	var out bytes.Buffer
	err := New(newSession(t), strings.NewReader("9\n"), &out).Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Invalid choice. Please select 1-6!")
	assert.NotContains(t, out.String(), "Thanks for using CineRAG!")
}

func TestShell_EOFDuringFeedback(t *testing.T) {
	session := newSession(t)
	var out bytes.Buffer
	err := New(session, strings.NewReader("1\naction\nl\n"), &out).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, session.Profile().Liked, 1)
}

func TestDemo(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Demo(context.Background(), newSession(t), &out))

	for _, q := range service.DemoQueries {
		assert.Contains(t, out.String(), "Query: '"+q+"'")
	}
	assert.Contains(t, out.String(), "3. ")
	assert.Contains(t, out.String(), "Demo complete!")
}

func TestShell_StopsWhileWaitingForInput(t *testing.T) {
	session := newSession(t)
	in, feed := io.Pipe()
	defer feed.Close()

	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- New(session, in, &out).Run(ctx) }()

	// 选择搜索后不再输入，模拟停在提示处时按下 Ctrl-C
	_, err := feed.Write([]byte("1\n"))
	require.NoError(t, err)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("shell kept waiting for input after cancel")
	}
	assert.NotContains(t, out.String(), "Found")
	assert.NotContains(t, out.String(), "Please enter a search query!")
	assert.Empty(t, session.Profile().History)
}

func TestShell_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := New(newSession(t), strings.NewReader("6\n"), &out).Run(ctx)
	require.NoError(t, err)
	assert.NotContains(t, out.String(), "Thanks for using CineRAG!")
}
