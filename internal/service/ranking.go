package service

import (
	"math"
	"sort"
	"strings"

	"github.com/user/cinerag/internal/model"
)

// recommendationPrefix 推荐伪查询的固定前缀
const recommendationPrefix = "movies similar to "

// Weights 个性化排序策略
type Weights struct {
	Query          float64 // 查询相似度权重
	Taste          float64 // 口味相似度权重
	DislikePenalty float64 // 不喜欢的惩罚系数
	GenreBoost     float64 // 偏好类型的加成系数
}

// DefaultWeights 默认策略 0.6 / 0.4 / 0.1 / 1.2
func DefaultWeights() Weights {
	return Weights{
		Query:          0.6,
		Taste:          0.4,
		DislikePenalty: 0.1,
		GenreBoost:     1.2,
	}
}

// ScoredMovie 排序结果
type ScoredMovie struct {
	Movie     model.Movie `json:"movie"`
	Score     float64     `json:"score"`
	BaseScore float64     `json:"base_score"`
	Liked     bool        `json:"liked"`
	Disliked  bool        `json:"disliked"`
	Reason    string      `json:"reason,omitempty"`
}

// CosineSimilarity 余弦相似度，任一向量为零向量或维度不一致时返回 0
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) || math.IsInf(sim, 0) {
		return 0
	}
	return sim
}

// TasteVector 所有喜欢的电影向量的逐元素均值
// 没有任何喜欢的标题能在目录中找到时返回 false
func TasteVector(entries []model.CatalogEntry, profile model.PreferenceProfile) ([]float32, bool) {
	if len(profile.Liked) == 0 {
		return nil, false
	}

	var sum []float64
	n := 0
	for _, e := range entries {
		if !profile.IsLiked(e.Movie.Title) {
			continue
		}
		if sum == nil {
			sum = make([]float64, len(e.Embedding))
		}
		// 维度不一致的向量无法参与均值
		if len(e.Embedding) != len(sum) {
			continue
		}
		for i, v := range e.Embedding {
			sum[i] += float64(v)
		}
		n++
	}

	if n == 0 {
		return nil, false
	}

	taste := make([]float32, len(sum))
	for i := range sum {
		taste[i] = float32(sum[i] / float64(n))
	}
	return taste, true
}

// Ranker 排序引擎
type Ranker struct {
	weights Weights
}

// NewRanker 创建排序引擎
func NewRanker(weights Weights) *Ranker {
	return &Ranker{weights: weights}
}

func (r *Ranker) Weights() Weights {
	return r.weights
}

// Adjust 个性化调整：先混合，再惩罚，最后类型加成
// taste 为 nil 时（没有可用的喜欢记录）原样返回
func (r *Ranker) Adjust(entry model.CatalogEntry, base float64, taste []float32, profile model.PreferenceProfile) float64 {
	if taste == nil {
		return base
	}
	return r.applyPreferences(entry.Movie, r.Blend(base, CosineSimilarity(taste, entry.Embedding)), profile)
}

// Blend 混合查询相似度与口味相似度
func (r *Ranker) Blend(base, tasteSim float64) float64 {
	return base*r.weights.Query + tasteSim*r.weights.Taste
}

// applyPreferences 依次应用不喜欢惩罚与偏好类型加成，二者可以同时生效
func (r *Ranker) applyPreferences(movie model.Movie, score float64, profile model.PreferenceProfile) float64 {
	if profile.IsDisliked(movie.Title) {
		score *= r.weights.DislikePenalty
	}
	for _, g := range movie.Genres() {
		if profile.PrefersGenre(g) {
			score *= r.weights.GenreBoost
			break
		}
	}
	return score
}

// Rank 计算相似度、个性化调整，并按分数降序返回前 k 条
// 分数相同时保持目录顺序
func (r *Ranker) Rank(query []float32, entries []model.CatalogEntry, profile model.PreferenceProfile, k int) []ScoredMovie {
	if len(entries) == 0 || k <= 0 {
		return []ScoredMovie{}
	}

	taste, ok := TasteVector(entries, profile)
	if !ok {
		taste = nil
	}

	results := make([]ScoredMovie, len(entries))
	for i, e := range entries {
		base := CosineSimilarity(query, e.Embedding)
		results[i] = ScoredMovie{
			Movie:     e.Movie,
			BaseScore: base,
			Score:     r.Adjust(e, base, taste, profile),
			Liked:     profile.IsLiked(e.Movie.Title),
			Disliked:  profile.IsDisliked(e.Movie.Title),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}

// RecommendationQuery 由喜欢的电影拼出推荐伪查询
// 没有任何喜欢记录时返回 false
func RecommendationQuery(entries []model.CatalogEntry, profile model.PreferenceProfile) (string, bool) {
	if len(profile.Liked) == 0 {
		return "", false
	}

	parts := make([]string, 0, len(profile.Liked))
	for _, e := range entries {
		if profile.IsLiked(e.Movie.Title) {
			parts = append(parts, e.Movie.Genre+" "+e.Movie.Description)
		}
	}
	return recommendationPrefix + strings.Join(parts, " "), true
}
