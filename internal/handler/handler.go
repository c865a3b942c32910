package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/cinerag/internal/config"
	"github.com/user/cinerag/internal/middleware"
	"github.com/user/cinerag/internal/service"
	"github.com/user/cinerag/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// posterTimeout 解析海报页面的超时时间
const posterTimeout = 10 * time.Second

// Handler HTTP 处理器
type Handler struct {
	Session *service.Session
	Config  *config.Config
	Posters *service.PosterResolver

	adminHash []byte
}

// NewHandler 创建处理器；设置了管理员密码时预先计算 bcrypt 哈希
func NewHandler(session *service.Session, cfg *config.Config) (*Handler, error) {
	h := &Handler{
		Session: session,
		Config:  cfg,
		Posters: service.NewPosterResolver(posterTimeout, cfg.PosterAllowPrivateHosts),
	}

	if cfg.AdminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		h.adminHash = hash
	}
	return h, nil
}

// AdminEnabled 是否开启管理员鉴权
func (h *Handler) AdminEnabled() bool {
	return h.adminHash != nil
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type loginRequest struct {
	Password string `json:"password"`
}

// Login 校验管理员密码并签发 Token
func (h *Handler) Login(c *gin.Context) {
	if !h.AdminEnabled() {
		utils.BadRequest(c, "admin login is not enabled")
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		utils.BadRequest(c, "password is required")
		return
	}

	if bcrypt.CompareHashAndPassword(h.adminHash, []byte(req.Password)) != nil {
		utils.Unauthorized(c, "wrong password")
		return
	}

	token, err := middleware.GenerateToken(middleware.RoleAdmin, middleware.RoleAdmin, h.Config.AppSecret, h.Config.JWTExpiry)
	if err != nil {
		utils.InternalServerError(c, "login failed, please retry")
		return
	}

	utils.Success(c, gin.H{
		"token":      token,
		"expires_in": int(h.Config.JWTExpiry.Seconds()),
	})
}
