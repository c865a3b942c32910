package model

import (
	"fmt"
	"strings"
	"time"
)

// FeedbackKind 用户反馈类型
type FeedbackKind string

const (
	FeedbackLike    FeedbackKind = "like"
	FeedbackDislike FeedbackKind = "dislike"
)

// ParseFeedbackKind 解析反馈类型，支持 l/d 简写
func ParseFeedbackKind(s string) (FeedbackKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "like", "l":
		return FeedbackLike, nil
	case "dislike", "d":
		return FeedbackDislike, nil
	default:
		return "", fmt.Errorf("unknown feedback kind %q", s)
	}
}

// Interaction 交互日志条目
type Interaction struct {
	ID        string       `json:"id,omitempty"`
	Title     string       `json:"title"`
	Action    FeedbackKind `json:"action"`
	Timestamp time.Time    `json:"timestamp"`
}

// PreferenceProfile 用户偏好档案
// Liked 与 Disliked 允许同时包含同一标题
type PreferenceProfile struct {
	Liked           []string      `json:"liked"`
	Disliked        []string      `json:"disliked"`
	PreferredGenres []string      `json:"preferred_genres"`
	History         []Interaction `json:"history"`
}

// NewPreferenceProfile 创建空档案
func NewPreferenceProfile() PreferenceProfile {
	return PreferenceProfile{
		Liked:           []string{},
		Disliked:        []string{},
		PreferredGenres: []string{},
		History:         []Interaction{},
	}
}

// Clone 深拷贝
func (p PreferenceProfile) Clone() PreferenceProfile {
	return PreferenceProfile{
		Liked:           append([]string{}, p.Liked...),
		Disliked:        append([]string{}, p.Disliked...),
		PreferredGenres: append([]string{}, p.PreferredGenres...),
		History:         append([]Interaction{}, p.History...),
	}
}

func (p PreferenceProfile) IsLiked(title string) bool {
	return contains(p.Liked, title)
}

func (p PreferenceProfile) IsDisliked(title string) bool {
	return contains(p.Disliked, title)
}

func (p PreferenceProfile) PrefersGenre(genre string) bool {
	return contains(p.PreferredGenres, genre)
}

// contains 检查字符串是否在切片中
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
