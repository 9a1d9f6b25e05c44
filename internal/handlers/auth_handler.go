package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/foodmap/configs"
	"github.com/foodmap/internal/auth"
	"github.com/foodmap/internal/logger"
	"github.com/foodmap/pkg/utils"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserInfo  `json:"user"`
}

type UserInfo struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// AuthHandler 管理员登录/登出，凭据来自配置
type AuthHandler struct {
	cfg configs.Configuration
}

func NewAuthHandler(cfg configs.Configuration) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// Secret 签名密钥，供登出路由的中间件使用
func (h *AuthHandler) Secret() string {
	return h.cfg.JWTSecret
}

// Login godoc
// @Summary 管理员登录
// @Description 验证管理员凭证并返回 JWT（24 小时有效）。未配置管理员凭据时返回 503。
// @Tags auth
// @Accept  json
// @Produce  json
// @Param credentials body LoginRequest true "登录凭证"
// @Success 200 {object} utils.SuccessResponse{data=LoginResponse} "登录成功，返回 Token 和用户信息"
// @Failure 400 {object} utils.APIErrorResponse "请求参数错误"
// @Failure 401 {object} utils.APIErrorResponse "无效的用户名或密码"
// @Failure 503 {object} utils.APIErrorResponse "未启用管理员认证"
// @Router /admin/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	if !h.cfg.AdminAuthEnabled() {
		utils.RespondServiceUnavailableError(c, "Admin authentication is not enabled")
		return
	}
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.cfg.AdminUsername)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(h.cfg.AdminPasswordHash), []byte(req.Password))
	if !userOK || passErr != nil {
		logger.L().Warn("admin_login_failed", "username", req.Username, "ip", c.ClientIP())
		utils.RespondUnauthorizedError(c, "Invalid username or password")
		return
	}

	token, expiresAt, err := auth.IssueToken(h.cfg.JWTSecret, req.Username, time.Now())
	if err != nil {
		utils.RespondInternalServerError(c, "Could not generate token", err.Error())
		return
	}

	utils.RespondSuccess(c, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      UserInfo{Username: req.Username, Role: auth.RoleAdmin},
	}, "Login successful")
}

// Logout godoc
// @Summary 管理员登出
// @Description 将当前 Token 的 JTI 加入拒绝列表。
// @Tags auth
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} utils.SuccessResponse "成功登出"
// @Failure 400 {object} utils.APIErrorResponse "上下文中缺少JTI或EXP"
// @Router /admin/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	jtiVal, jtiExists := c.Get("jti")
	expVal, expExists := c.Get("exp")

	if !jtiExists || !expExists {
		utils.RespondAPIError(c, http.StatusBadRequest, "Logout context error: JTI or EXP not found in context", nil)
		return
	}

	jti, okJTI := jtiVal.(string)
	exp, okEXP := expVal.(time.Time)

	if !okJTI || jti == "" {
		utils.RespondAPIError(c, http.StatusBadRequest, "Logout context error: Invalid JTI", nil)
		return
	}
	if !okEXP {
		utils.RespondAPIError(c, http.StatusBadRequest, "Logout context error: Invalid EXP", nil)
		return
	}

	auth.AddToDenylist(jti, exp)
	utils.RespondSuccess(c, http.StatusOK, nil, "Logged out")
}
