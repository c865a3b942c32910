package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/user/cinerag/internal/model"
)

// 推荐理由类型
const (
	ReasonLiked      = "liked"
	ReasonDisliked   = "disliked"
	ReasonGenre      = "genre"
	ReasonEraRating  = "era_rating"
	ReasonEra        = "era"
	ReasonRating     = "rating"
	ReasonSemantic   = "semantic"
	ReasonGeneral    = "general"
	ReasonQueryMatch = "query"
)

// reasonWeights 综合相似度权重，用于挑选最接近的已喜欢电影
var reasonWeights = map[string]float64{
	"genre":  0.6,
	"rating": 0.25,
	"era":    0.15,
}

// calculateGenreSimilarity 计算类型重合度
func calculateGenreSimilarity(sourceGenres, targetGenres string) (float64, []string) {
	sourceList := model.SplitGenres(sourceGenres)
	targetList := model.SplitGenres(targetGenres)

	commonGenres := []string{}
	for _, source := range sourceList {
		if contains(targetList, source) {
			commonGenres = append(commonGenres, source)
		}
	}

	maxLen := math.Max(float64(len(sourceList)), float64(len(targetList)))
	if maxLen == 0 {
		return 0, commonGenres
	}
	return float64(len(commonGenres)) / maxLen, commonGenres
}

// calculateRatingSimilarity 评分差异越小，相似度越高
func calculateRatingSimilarity(sourceRating, targetRating float64) float64 {
	ratingDiff := math.Abs(sourceRating - targetRating)
	return math.Max(0, 1-(ratingDiff/10.0))
}

// calculateEraSimilarity 计算年代相似度
func calculateEraSimilarity(sourceYear, targetYear string) float64 {
	sourceYearInt := 0
	targetYearInt := 0

	if sourceYear != "" {
		fmt.Sscanf(sourceYear, "%d", &sourceYearInt)
	}
	if targetYear != "" {
		fmt.Sscanf(targetYear, "%d", &targetYearInt)
	}

	if sourceYearInt == 0 || targetYearInt == 0 {
		return 0.5 // 年份无效时返回中等相似度
	}

	yearDiff := math.Abs(float64(sourceYearInt - targetYearInt))
	switch {
	case yearDiff <= 1:
		return 1.0
	case yearDiff <= 3:
		return 0.8
	case yearDiff <= 5:
		return 0.6
	case yearDiff <= 10:
		return 0.4
	default:
		return 0.2
	}
}

// GenerateRecommendationReason 生成推荐理由（基于优先级算法）
// 返回理由、理由类型与综合相似度
func GenerateRecommendationReason(sourceMovie, targetMovie model.Movie) (string, string, float64) {
	genreSimilarity, commonGenres := calculateGenreSimilarity(sourceMovie.Genre, targetMovie.Genre)
	ratingSimilarity := calculateRatingSimilarity(sourceMovie.Rating, targetMovie.Rating)
	eraSimilarity := calculateEraSimilarity(sourceMovie.Year, targetMovie.Year)

	totalSimilarity := genreSimilarity*reasonWeights["genre"] +
		ratingSimilarity*reasonWeights["rating"] +
		eraSimilarity*reasonWeights["era"]

	// 1. 类型重合
	if len(commonGenres) > 0 {
		return fmt.Sprintf("Shares %s with %s, which you liked", joinGenres(commonGenres), sourceMovie.Title),
			ReasonGenre, totalSimilarity
	}

	// 2. 年代与评分都接近
	if eraSimilarity > 0.6 && ratingSimilarity > 0.7 {
		reason := fmt.Sprintf("From the same era as %s with a similar rating (%.1f vs %.1f)",
			sourceMovie.Title, sourceMovie.Rating, targetMovie.Rating)
		return reason, ReasonEraRating, totalSimilarity
	}

	// 3. 仅年代接近
	if eraSimilarity > 0.6 {
		return fmt.Sprintf("Released around %s, like %s", sourceMovie.Year, sourceMovie.Title),
			ReasonEra, totalSimilarity
	}

	// 4. 仅评分接近
	if ratingSimilarity > 0.8 {
		return fmt.Sprintf("Rated as highly as %s (%.1f vs %.1f)", sourceMovie.Title, sourceMovie.Rating, targetMovie.Rating),
			ReasonRating, totalSimilarity
	}

	// 5. 兜底：语义相似
	if keywords := extractSemanticKeywords(targetMovie.Description); len(keywords) > 0 {
		return fmt.Sprintf("Explores themes of %s", strings.Join(keywords, ", ")),
			ReasonSemantic, totalSimilarity
	}

	return "Similar in content to movies you liked", ReasonGeneral, totalSimilarity
}

// ExplainResult 为单条结果生成理由
// liked 为目录中已喜欢的电影；为空时按查询匹配解释
func ExplainResult(result ScoredMovie, liked []model.Movie) (string, string) {
	switch {
	case result.Liked:
		return "You liked this movie", ReasonLiked
	case result.Disliked:
		return "You disliked this movie, so it is ranked lower", ReasonDisliked
	case len(liked) == 0:
		return fmt.Sprintf("Matches your query (similarity %.2f)", result.BaseScore), ReasonQueryMatch
	}

	bestReason, bestType, bestScore := "", ReasonGeneral, -1.0
	for _, source := range liked {
		reason, reasonType, score := GenerateRecommendationReason(source, result.Movie)
		if score > bestScore {
			bestReason, bestType, bestScore = reason, reasonType, score
		}
	}
	return bestReason, bestType
}

func joinGenres(genres []string) string {
	if len(genres) == 1 {
		return genres[0]
	}
	return strings.Join(genres[:len(genres)-1], ", ") + " and " + genres[len(genres)-1]
}

// semanticKeywords 简介中可识别的主题词
var semanticKeywords = []string{
	"family", "friendship", "love", "revenge", "identity", "survival",
	"magic", "space", "planet", "future", "technology", "reality",
	"mission", "spy", "crime", "corruption", "killer", "mystery",
	"adventure", "hero", "villain", "power", "war", "past",
}

// extractSemanticKeywords 提取最多 3 个主题词
func extractSemanticKeywords(content string) []string {
	keywords := []string{}
	lower := strings.ToLower(content)
	for _, pattern := range semanticKeywords {
		if strings.Contains(lower, pattern) {
			keywords = append(keywords, pattern)
		}
		if len(keywords) == 3 {
			break
		}
	}
	return keywords
}
