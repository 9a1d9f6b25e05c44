package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/foodmap/internal/auth"
	"github.com/foodmap/internal/handlers"
)

// SetupAuthRoutes 设置管理员认证相关路由
func SetupAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler) {
	publicAuthGroup := api.Group("/admin")
	{
		// POST /api/admin/login
		publicAuthGroup.POST("/login", h.Login)
	}

	// 登出需要有效 Token，与 RequireAdmin 不同，即使未启用认证也不放行
	protectedAuthGroup := api.Group("/admin")
	protectedAuthGroup.Use(auth.JWTMiddleware(h.Secret()))
	{
		// POST /api/admin/logout
		protectedAuthGroup.POST("/logout", h.Logout)
	}
}
