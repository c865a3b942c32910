package router

import (
	"github.com/gin-gonic/gin"
	"github.com/user/cinerag/internal/handler"
	"github.com/user/cinerag/internal/middleware"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.POST("/auth/login", h.Login)

		api.GET("/movies", h.ListMovies)
		api.GET("/search", h.Search)
		api.GET("/recommendations", h.Recommendations)
		api.POST("/feedback", h.SubmitFeedback)
		api.GET("/profile", h.Profile)
		api.GET("/analytics", h.Analytics)
	}

	// ==================== 目录写入 ====================
	admin := api.Group("")
	admin.Use(middleware.RequireAdmin(h.Config.AppSecret, h.AdminEnabled()))
	{
		admin.POST("/movies", h.AddMovie)
	}
}
