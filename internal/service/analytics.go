package service

import "github.com/user/cinerag/internal/model"

const (
	analyticsRecentLiked = 5
	analyticsTopGenres   = 5
	analyticsWindow      = 10
	analyticsMinHistory  = 5
)

// Analytics 用户画像统计
type Analytics struct {
	MovieCount       int      `json:"movie_count"`
	LikedCount       int      `json:"liked_count"`
	DislikedCount    int      `json:"disliked_count"`
	GenreCount       int      `json:"genre_count"`
	InteractionCount int      `json:"interaction_count"`
	RecentLiked      []string `json:"recent_liked"`
	PreferredGenres  []string `json:"preferred_genres"`
	// RecentLikeRate 最近 10 次交互中 like 的百分比，交互不超过 5 次时为 nil
	RecentLikeRate *float64 `json:"recent_like_rate,omitempty"`
}

// ComputeAnalytics 统计目录与档案
func ComputeAnalytics(movieCount int, profile model.PreferenceProfile) Analytics {
	a := Analytics{
		MovieCount:       movieCount,
		LikedCount:       len(profile.Liked),
		DislikedCount:    len(profile.Disliked),
		GenreCount:       len(profile.PreferredGenres),
		InteractionCount: len(profile.History),
		RecentLiked:      lastN(profile.Liked, analyticsRecentLiked),
		PreferredGenres:  firstN(profile.PreferredGenres, analyticsTopGenres),
	}

	if len(profile.History) > analyticsMinHistory {
		window := profile.History
		if len(window) > analyticsWindow {
			window = window[len(window)-analyticsWindow:]
		}
		likes := 0
		for _, it := range window {
			if it.Action == model.FeedbackLike {
				likes++
			}
		}
		rate := float64(likes) / float64(len(window)) * 100
		a.RecentLikeRate = &rate
	}
	return a
}

func lastN(s []string, n int) []string {
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return append([]string{}, s...)
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		s = s[:n]
	}
	return append([]string{}, s...)
}
