package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/user/cinerag/internal/embedding"
	"github.com/user/cinerag/internal/logging"
	"github.com/user/cinerag/internal/model"
	"github.com/user/cinerag/internal/repository"
	"github.com/user/cinerag/internal/utils"
	"golang.org/x/sync/singleflight"
)

// ErrEmbedding 向量服务调用失败
var ErrEmbedding = errors.New("embedding failed")

const (
	modeSearch    = "search"
	modeRecommend = "recommend"
)

// embeddingDrift 重新生成的向量与保存的向量余弦低于此值时视为换了模型
const embeddingDrift = 0.99

// Options 会话参数
type Options struct {
	Embedder embedding.Embedder
	// Store 为 nil 时只在内存中运行
	Store          repository.SnapshotStore
	Weights        Weights
	ResultCacheTTL time.Duration
	// SeedMovies 为 nil 时使用 DefaultMovies
	SeedMovies []model.Movie
}

// Session 目录 + 偏好的唯一持有者
type Session struct {
	mu       sync.RWMutex
	catalog  *Catalog
	prefs    *PreferenceStore
	ranker   *Ranker
	embedder embedding.Embedder
	revision uint64

	saveMu        sync.Mutex
	store         repository.SnapshotStore
	savedRevision uint64

	results *utils.ResultCache[[]ScoredMovie]
	sf      singleflight.Group
	log     zerolog.Logger
}

// Open 加载快照；没有快照或快照损坏时写入默认目录
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.Embedder == nil {
		return nil, errors.New("session requires an embedder")
	}

	weights := opts.Weights
	if weights == (Weights{}) {
		weights = DefaultWeights()
	}

	catalog := NewCatalog(opts.Embedder)
	s := &Session{
		catalog:  catalog,
		prefs:    NewPreferenceStore(model.NewPreferenceProfile(), catalog),
		ranker:   NewRanker(weights),
		embedder: opts.Embedder,
		store:    opts.Store,
		results:  utils.NewResultCache[[]ScoredMovie](opts.ResultCacheTTL),
		log:      logging.Component("session"),
	}

	if s.restore(ctx) && s.catalog.Len() > 0 {
		changed, err := s.reconcileEmbeddings(ctx)
		if err != nil {
			return nil, err
		}
		if changed {
			s.persist(ctx)
		}
		return s, nil
	}

	seed := opts.SeedMovies
	if seed == nil {
		seed = DefaultMovies()
	}
	if err := s.catalog.AddAll(ctx, seed); err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	s.bump()
	s.log.Info().Int("movies", s.catalog.Len()).Msg("seeded default catalog")
	s.persist(ctx)
	return s, nil
}

// restore 从存储恢复状态，成功返回 true
func (s *Session) restore(ctx context.Context) bool {
	if s.store == nil {
		return false
	}

	snap, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, repository.ErrNoSnapshot):
		s.log.Info().Msg("no saved state, starting fresh")
		return false
	case err != nil:
		s.log.Warn().Err(err).Msg("saved state unreadable, starting fresh")
		return false
	}

	entries, err := snap.Entries()
	if err != nil {
		s.log.Warn().Err(err).Msg("saved state unreadable, starting fresh")
		return false
	}

	s.catalog.Restore(entries)
	s.prefs.Restore(snap.Profile)
	s.log.Info().
		Int("movies", len(entries)).
		Int("liked", len(snap.Profile.Liked)).
		Msg("loaded saved state")
	return true
}

// reconcileEmbeddings 保存的向量与当前向量服务不一致时重新生成
// 用第一条电影试算一次；试算失败时保留已加载的向量
func (s *Session) reconcileEmbeddings(ctx context.Context) (bool, error) {
	entries := s.catalog.All()
	if s.catalog.Uniform() {
		first := entries[0]
		fresh, err := s.embedder.Embed(ctx, first.Movie.EmbeddingText())
		if err != nil {
			s.log.Warn().Err(err).Msg("embedding check skipped, keeping saved vectors")
			return false, nil
		}
		if len(fresh) == len(first.Embedding) &&
			(slices.Equal(fresh, first.Embedding) || CosineSimilarity(fresh, first.Embedding) >= embeddingDrift) {
			return false, nil
		}
		s.log.Warn().
			Int("saved_dims", len(first.Embedding)).
			Int("current_dims", len(fresh)).
			Msg("saved vectors come from a different embedding setup, re-embedding catalog")
	} else {
		s.log.Warn().Msg("saved vectors have mixed dimensions, re-embedding catalog")
	}

	if err := s.catalog.Reembed(ctx); err != nil {
		return false, fmt.Errorf("re-embed catalog: %w: %w", ErrEmbedding, err)
	}
	s.bump()
	s.log.Info().Int("movies", s.catalog.Len()).Int("dims", s.catalog.Dimensions()).Msg("catalog re-embedded")
	return true, nil
}

// Search 按查询排序，返回最多 k 条
func (s *Session) Search(ctx context.Context, query string, k int) ([]ScoredMovie, error) {
	query = strings.TrimSpace(query)
	if k <= 0 || query == "" {
		return []ScoredMovie{}, nil
	}
	return s.rank(ctx, modeSearch, query, k)
}

// Recommend 基于喜欢的电影生成推荐；没有喜欢记录时返回空
func (s *Session) Recommend(ctx context.Context, k int) ([]ScoredMovie, error) {
	if k <= 0 {
		return []ScoredMovie{}, nil
	}

	s.mu.RLock()
	query, ok := RecommendationQuery(s.catalog.All(), s.prefs.Profile())
	s.mu.RUnlock()
	if !ok {
		return []ScoredMovie{}, nil
	}
	return s.rank(ctx, modeRecommend, query, k)
}

func (s *Session) rank(ctx context.Context, mode, query string, k int) ([]ScoredMovie, error) {
	s.mu.RLock()
	key := strconv.FormatUint(s.revision, 10) + "|" + mode + "|" + strconv.Itoa(k) + "|" + query
	empty := s.catalog.Len() == 0
	s.mu.RUnlock()

	if empty {
		return []ScoredMovie{}, nil
	}
	if cached, ok := s.results.Get(key); ok {
		return cloneResults(cached), nil
	}

	// 合并后的调用不受单个调用方取消的影响
	flightCtx := context.WithoutCancel(ctx)
	ch := s.sf.DoChan(key, func() (interface{}, error) {
		vec, err := s.embedder.Embed(flightCtx, query)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
		}

		s.mu.RLock()
		entries := s.catalog.All()
		profile := s.prefs.Profile()
		s.mu.RUnlock()

		results := s.ranker.Rank(vec, entries, profile, k)
		liked := likedMovies(entries, profile)
		for i := range results {
			results[i].Reason, _ = ExplainResult(results[i], liked)
		}

		s.results.Set(key, results)
		return results, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		s.log.Error().Err(res.Err).Str("mode", mode).Msg("ranking failed")
		return nil, res.Err
	}

	s.log.Debug().Str("mode", mode).Int("k", k).Msg("ranked catalog")
	return cloneResults(res.Val.([]ScoredMovie)), nil
}

// AddMovie 校验后加入目录；向量生成失败时目录不变
func (s *Session) AddMovie(ctx context.Context, movie model.Movie) (model.Movie, error) {
	movie.Title = strings.TrimSpace(movie.Title)
	movie.Description = strings.TrimSpace(movie.Description)
	movie.Rating = model.ClampRating(movie.Rating)
	if err := movie.Validate(); err != nil {
		return model.Movie{}, err
	}

	s.mu.Lock()
	entry, err := s.catalog.Add(ctx, movie)
	if err == nil {
		s.bump()
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error().Err(err).Str("title", movie.Title).Msg("add movie failed")
		return model.Movie{}, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}

	s.log.Info().Str("title", movie.Title).Msg("movie added")
	s.persist(ctx)
	return entry.Movie, nil
}

// RecordFeedback 记录喜欢/不喜欢并立即保存
func (s *Session) RecordFeedback(ctx context.Context, title string, kind model.FeedbackKind) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: empty title", ErrInvalidFeedback)
	}

	s.mu.Lock()
	known := s.catalog.Contains(title)
	err := s.prefs.RecordFeedback(title, kind)
	if err == nil {
		s.bump()
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.log.Info().
		Str("title", title).
		Str("action", string(kind)).
		Bool("in_catalog", known).
		Msg("preference updated")
	s.persist(ctx)
	return nil
}

// Movies 目录中的全部电影，按入库顺序
func (s *Session) Movies() []model.Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.catalog.All()
	movies := make([]model.Movie, len(entries))
	for i, e := range entries {
		movies[i] = e.Movie
	}
	return movies
}

// Profile 偏好档案副本
func (s *Session) Profile() model.PreferenceProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.Profile()
}

// Analytics 偏好统计
func (s *Session) Analytics() Analytics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ComputeAnalytics(s.catalog.Len(), s.prefs.Profile())
}

func (s *Session) Weights() Weights {
	return s.ranker.Weights()
}

// Save 写入完整快照
func (s *Session) Save(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	snap := model.NewSnapshot(s.catalog.All(), s.prefs.Profile())
	rev := s.revision
	s.mu.RUnlock()

	if err := s.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	s.savedRevision = rev
	return nil
}

// Dirty 存在尚未成功保存的修改
func (s *Session) Dirty() bool {
	if s.store == nil {
		return false
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision != s.savedRevision
}

// bump 标记状态变化；旧版本的排序结果不会再命中，直接清空
// 调用方需持有写锁
func (s *Session) bump() {
	s.revision++
	s.results.Flush()
}

// persist 保存失败只记录日志
func (s *Session) persist(ctx context.Context) {
	if err := s.Save(ctx); err != nil {
		s.log.Warn().Err(err).Msg("state not saved")
		return
	}
	s.log.Debug().Msg("state saved")
}

// likedMovies 目录中被喜欢的电影
func likedMovies(entries []model.CatalogEntry, profile model.PreferenceProfile) []model.Movie {
	var liked []model.Movie
	for _, e := range entries {
		if profile.IsLiked(e.Movie.Title) {
			liked = append(liked, e.Movie)
		}
	}
	return liked
}

func cloneResults(in []ScoredMovie) []ScoredMovie {
	out := make([]ScoredMovie, len(in))
	copy(out, in)
	return out
}
