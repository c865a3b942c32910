package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/user/cinerag/internal/model"
)

// ErrInvalidFeedback 反馈类型不是 like / dislike
var ErrInvalidFeedback = errors.New("invalid feedback")

// GenreLookup 按标题查询类型
type GenreLookup interface {
	GenresOf(title string) []string
}

// PreferenceStore 用户偏好
// 喜欢/不喜欢集合去重，交互日志不去重
type PreferenceStore struct {
	profile model.PreferenceProfile
	lookup  GenreLookup
	now     func() time.Time
	newID   func() string
}

// NewPreferenceStore 基于已有档案创建
func NewPreferenceStore(profile model.PreferenceProfile, lookup GenreLookup) *PreferenceStore {
	return &PreferenceStore{
		profile: profile.Clone(),
		lookup:  lookup,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// RecordFeedback 记录一次反馈
// 同一标题可以同时出现在喜欢与不喜欢集合中
func (p *PreferenceStore) RecordFeedback(title string, kind model.FeedbackKind) error {
	switch kind {
	case model.FeedbackLike:
		if !contains(p.profile.Liked, title) {
			p.profile.Liked = append(p.profile.Liked, title)
			for _, g := range p.lookup.GenresOf(title) {
				if !contains(p.profile.PreferredGenres, g) {
					p.profile.PreferredGenres = append(p.profile.PreferredGenres, g)
				}
			}
		}
	case model.FeedbackDislike:
		if !contains(p.profile.Disliked, title) {
			p.profile.Disliked = append(p.profile.Disliked, title)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFeedback, kind)
	}

	p.profile.History = append(p.profile.History, model.Interaction{
		ID:        p.newID(),
		Title:     title,
		Action:    kind,
		Timestamp: p.now(),
	})
	return nil
}

// Profile 返回独立副本
func (p *PreferenceStore) Profile() model.PreferenceProfile {
	return p.profile.Clone()
}

// Restore 用快照中的档案替换当前内容
func (p *PreferenceStore) Restore(profile model.PreferenceProfile) {
	p.profile = profile.Clone()
}
