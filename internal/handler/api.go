package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/cinerag/internal/logging"
	"github.com/user/cinerag/internal/model"
	"github.com/user/cinerag/internal/service"
	"github.com/user/cinerag/internal/utils"
)

const (
	defaultLimit = 5
	maxLimit     = 50
)

// parseLimit 解析 k 参数，缺省为 5，上限 50
func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query("k")
	if raw == "" {
		return defaultLimit, true
	}
	k, err := strconv.Atoi(raw)
	if err != nil || k < 0 {
		return 0, false
	}
	if k > maxLimit {
		k = maxLimit
	}
	return k, true
}

// respondError 按错误类型映射状态码
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidMovie), errors.Is(err, service.ErrInvalidFeedback):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrEmbedding):
		utils.BadGateway(c, "embedding service failed")
	default:
		utils.InternalServerError(c, "")
	}
}

// ListMovies 全部电影，附带喜欢/不喜欢状态
func (h *Handler) ListMovies(c *gin.Context) {
	profile := h.Session.Profile()
	movies := h.Session.Movies()

	type movieStatus struct {
		model.Movie
		Liked    bool `json:"liked"`
		Disliked bool `json:"disliked"`
	}
	items := make([]movieStatus, len(movies))
	for i, m := range movies {
		items[i] = movieStatus{
			Movie:    m,
			Liked:    profile.IsLiked(m.Title),
			Disliked: profile.IsDisliked(m.Title),
		}
	}

	utils.Success(c, gin.H{
		"total": len(items),
		"items": items,
	})
}

type addMovieRequest struct {
	model.Movie
	// PageURL 电影详情页，未提供 poster_url 时从中解析海报
	PageURL string `json:"page_url"`
}

// AddMovie 添加电影
func (h *Handler) AddMovie(c *gin.Context) {
	var req addMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid request body")
		return
	}

	// 抓取页面只对已登录的管理员开放
	if req.PageURL != "" && !h.AdminEnabled() {
		utils.Forbidden(c, "page_url requires admin authentication")
		return
	}

	movie := req.Movie
	movie.Title = utils.CleanMovieTitle(movie.Title)
	if movie.PosterURL == "" && req.PageURL != "" {
		poster, err := h.Posters.Resolve(c.Request.Context(), req.PageURL)
		if err != nil {
			logging.Warn().Err(err).Str("page_url", req.PageURL).Msg("poster not resolved")
		} else {
			movie.PosterURL = poster
		}
	}

	added, err := h.Session.AddMovie(c.Request.Context(), movie)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, added)
}

// Search 语义搜索
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		utils.BadRequest(c, "query parameter q is required")
		return
	}
	k, ok := parseLimit(c)
	if !ok {
		utils.BadRequest(c, "k must be a non-negative integer")
		return
	}

	results, err := h.Session.Search(c.Request.Context(), query, k)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.Success(c, gin.H{
		"query":   query,
		"results": results,
	})
}

// Recommendations 个性化推荐；没有喜欢记录时 insufficient_data 为 true
func (h *Handler) Recommendations(c *gin.Context) {
	k, ok := parseLimit(c)
	if !ok {
		utils.BadRequest(c, "k must be a non-negative integer")
		return
	}

	results, err := h.Session.Recommend(c.Request.Context(), k)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.Success(c, gin.H{
		"insufficient_data": len(h.Session.Profile().Liked) == 0,
		"results":           results,
	})
}

type feedbackRequest struct {
	Title  string `json:"title"`
	Action string `json:"action"`
}

// SubmitFeedback 记录喜欢/不喜欢
func (h *Handler) SubmitFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "invalid request body")
		return
	}

	kind, err := model.ParseFeedbackKind(req.Action)
	if err != nil {
		utils.BadRequest(c, "action must be like or dislike")
		return
	}

	if err := h.Session.RecordFeedback(c.Request.Context(), req.Title, kind); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, h.Session.Profile())
}

// Profile 偏好档案
func (h *Handler) Profile(c *gin.Context) {
	utils.Success(c, h.Session.Profile())
}

// Analytics 偏好统计
func (h *Handler) Analytics(c *gin.Context) {
	utils.Success(c, h.Session.Analytics())
}
