package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/cinerag/internal/config"
	"github.com/user/cinerag/internal/embedding"
	"github.com/user/cinerag/internal/handler"
	"github.com/user/cinerag/internal/middleware"
	"github.com/user/cinerag/internal/model"
	"github.com/user/cinerag/internal/router"
	"github.com/user/cinerag/internal/service"
)

type envelope struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Success   bool            `json:"success"`
	RequestID string          `json:"request_id"`
}

type testServer struct {
	engine  *gin.Engine
	session *service.Session
}

func newTestServer(t *testing.T, adminPassword string, opts ...func(*config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	session, err := service.Open(context.Background(), service.Options{
		Embedder:   embedding.NewHashEmbedder(64),
		SeedMovies: service.DefaultMovies()[:5],
	})
	require.NoError(t, err)

	cfg := &config.Config{
		AppSecret:     "test-secret",
		AdminPassword: adminPassword,
		JWTExpiry:     time.Hour,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	h, err := handler.NewHandler(session, cfg)
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.Logger())
	router.RegisterRoutes(r, h)
	return &testServer{engine: r, session: session}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "")
	w, _ := s.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestListMovies(t *testing.T) {
	s := newTestServer(t, "")
	require.NoError(t, s.session.RecordFeedback(context.Background(), "Dune", model.FeedbackLike))

	w, env := s.do(t, http.MethodGet, "/api/movies", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	var data struct {
		Total int `json:"total"`
		Items []struct {
			Title string `json:"title"`
			Liked bool   `json:"liked"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 5, data.Total)
	require.Len(t, data.Items, 5)
	for _, it := range data.Items {
		assert.Equal(t, it.Title == "Dune", it.Liked, it.Title)
	}
}

func TestSearch(t *testing.T) {
	s := newTestServer(t, "")

	w, env := s.do(t, http.MethodGet, "/api/search?q=superhero+action&k=3", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Query   string                `json:"query"`
		Results []service.ScoredMovie `json:"results"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "superhero action", data.Query)
	assert.Len(t, data.Results, 3)

	w, _ = s.do(t, http.MethodGet, "/api/search", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/search?q=x&k=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/search?q=x&k=0", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Empty(t, data.Results)
}

func TestFeedbackAndRecommendations(t *testing.T) {
	s := newTestServer(t, "")

	type recs struct {
		InsufficientData bool                  `json:"insufficient_data"`
		Results          []service.ScoredMovie `json:"results"`
	}

	w, env := s.do(t, http.MethodGet, "/api/recommendations", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var before recs
	require.NoError(t, json.Unmarshal(env.Data, &before))
	assert.True(t, before.InsufficientData)
	assert.Empty(t, before.Results)

	w, env = s.do(t, http.MethodPost, "/api/feedback", gin.H{"title": "The Batman", "action": "like"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var profile model.PreferenceProfile
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, []string{"The Batman"}, profile.Liked)
	assert.Equal(t, []string{"Action", "Crime"}, profile.PreferredGenres)

	w, env = s.do(t, http.MethodGet, "/api/recommendations?k=2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var after recs
	require.NoError(t, json.Unmarshal(env.Data, &after))
	assert.False(t, after.InsufficientData)
	assert.Len(t, after.Results, 2)

	w, _ = s.do(t, http.MethodPost, "/api/feedback", gin.H{"title": "The Batman", "action": "meh"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/feedback", gin.H{"title": "", "action": "like"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileAndAnalytics(t *testing.T) {
	s := newTestServer(t, "")
	require.NoError(t, s.session.RecordFeedback(context.Background(), "Encanto", model.FeedbackDislike))

	w, env := s.do(t, http.MethodGet, "/api/profile", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var profile model.PreferenceProfile
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, []string{"Encanto"}, profile.Disliked)
	require.Len(t, profile.History, 1)

	w, env = s.do(t, http.MethodGet, "/api/analytics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var a service.Analytics
	require.NoError(t, json.Unmarshal(env.Data, &a))
	assert.Equal(t, 5, a.MovieCount)
	assert.Equal(t, 1, a.DislikedCount)
	assert.Equal(t, w.Header().Get(middleware.RequestIDHeader), env.RequestID)
}

func TestAddMovieOpen(t *testing.T) {
	s := newTestServer(t, "")

	movie := gin.H{"title": "Arrival [1080p]", "year": "2016", "genre": "Sci-Fi/Drama", "rating": 7.9, "description": "A linguist works with the military to communicate with alien lifeforms."}
	w, env := s.do(t, http.MethodPost, "/api/movies", movie, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var added model.Movie
	require.NoError(t, json.Unmarshal(env.Data, &added))
	assert.Equal(t, "Arrival", added.Title)
	assert.Len(t, s.session.Movies(), 6)

	w, _ = s.do(t, http.MethodPost, "/api/movies", gin.H{"title": "No description"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, s.session.Movies(), 6)
}

func posterPage(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`<html><head><meta property="og:image" content="/poster.jpg"></head></html>`))
	}))
	t.Cleanup(page.Close)
	return page, &hits
}

func login(t *testing.T, s *testServer, password string) string {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/auth/login", gin.H{"password": password}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestAddMovieResolvesPoster(t *testing.T) {
	page, hits := posterPage(t)
	s := newTestServer(t, "letmein", func(c *config.Config) { c.PosterAllowPrivateHosts = true })
	token := login(t, s, "letmein")

	movie := gin.H{"title": "Arrival", "description": "aliens", "rating": 8, "page_url": page.URL + "/film"}
	w, env := s.do(t, http.MethodPost, "/api/movies", movie, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var added model.Movie
	require.NoError(t, json.Unmarshal(env.Data, &added))
	assert.Equal(t, page.URL+"/poster.jpg", added.PosterURL)
	assert.EqualValues(t, 1, hits.Load())
}

func TestAddMoviePageURLNeedsAdmin(t *testing.T) {
	page, hits := posterPage(t)
	s := newTestServer(t, "", func(c *config.Config) { c.PosterAllowPrivateHosts = true })

	movie := gin.H{"title": "Arrival", "description": "aliens", "rating": 8, "page_url": page.URL + "/film"}
	w, _ := s.do(t, http.MethodPost, "/api/movies", movie, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, hits.Load())
	assert.Len(t, s.session.Movies(), 5)
}

func TestAddMoviePosterSkipsPrivateHosts(t *testing.T) {
	page, hits := posterPage(t)
	s := newTestServer(t, "letmein")
	token := login(t, s, "letmein")

	movie := gin.H{"title": "Arrival", "description": "aliens", "rating": 8, "page_url": page.URL + "/film"}
	w, env := s.do(t, http.MethodPost, "/api/movies", movie, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var added model.Movie
	require.NoError(t, json.Unmarshal(env.Data, &added))
	assert.Empty(t, added.PosterURL)
	assert.Zero(t, hits.Load())
}

func TestAddMovieRequiresAdmin(t *testing.T) {
	s := newTestServer(t, "letmein")
	movie := gin.H{"title": "Arrival", "description": "aliens", "rating": 8}

	w, _ := s.do(t, http.MethodPost, "/api/movies", movie, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/auth/login", gin.H{"password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := s.do(t, http.MethodPost, "/api/auth/login", gin.H{"password": "letmein"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.Token)

	w, _ = s.do(t, http.MethodPost, "/api/movies", movie, login.Token)
	assert.Equal(t, http.StatusCreated, w.Code)

	// 读接口不需要 Token
	w, _ = s.do(t, http.MethodGet, "/api/movies", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginDisabledWithoutPassword(t *testing.T) {
	s := newTestServer(t, "")
	w, _ := s.do(t, http.MethodPost, "/api/auth/login", gin.H{"password": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
