package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// GenreSeparator 复合类型标签的分隔符，如 "Action/Adventure"
const GenreSeparator = "/"

// DefaultRating 手动录入评分无法解析时使用的默认值
const DefaultRating = 7.0

// ErrInvalidMovie 电影记录校验失败
var ErrInvalidMovie = errors.New("invalid movie")

var validate = validator.New()

// Movie 电影记录，入库后不再修改
type Movie struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Year        string  `json:"year" validate:"omitempty,max=16"`
	Genre       string  `json:"genre" validate:"max=120"`
	Rating      float64 `json:"rating" validate:"gte=0,lte=10"`
	Description string  `json:"description" validate:"required"`
	PosterURL   string  `json:"poster_url,omitempty" validate:"omitempty,url"`
}

// Validate 校验必填字段与评分范围
func (m Movie) Validate() error {
	if err := validate.Struct(m); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: field %s failed %q", ErrInvalidMovie, strings.ToLower(fe.Field()), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidMovie, err)
	}
	return nil
}

// Genres 拆分复合类型标签
func (m Movie) Genres() []string {
	return SplitGenres(m.Genre)
}

// EmbeddingText 生成向量所用的文本：标题 + 类型 + 简介
func (m Movie) EmbeddingText() string {
	return m.Title + " " + m.Genre + " " + m.Description
}

// String 控制台展示格式
func (m Movie) String() string {
	return fmt.Sprintf("%s (%s) - %s - ⭐%.1f/10", m.Title, m.Year, m.Genre, m.Rating)
}

// SplitGenres 按 "/" 拆分类型，去掉空白与空项
func SplitGenres(genre string) []string {
	if genre == "" {
		return []string{}
	}

	parts := strings.Split(genre, GenreSeparator)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ClampRating 将评分限制在 [0, 10]
func ClampRating(r float64) float64 {
	if r < 0 {
		return 0
	}
	if r > 10 {
		return 10
	}
	return r
}

// ParseRating 解析用户输入的评分，非数字时返回默认值
func ParseRating(s string) (float64, bool) {
	r, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(r) {
		return DefaultRating, false
	}
	return ClampRating(r), true
}

// CatalogEntry 目录条目：电影记录与其向量作为一个整体存放
type CatalogEntry struct {
	Movie     Movie     `json:"movie"`
	Embedding []float32 `json:"embedding"`
}
