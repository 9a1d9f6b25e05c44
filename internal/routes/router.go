package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/foodmap/configs"
	"github.com/foodmap/internal/auth"
	"github.com/foodmap/internal/handlers"
	"github.com/foodmap/internal/logger"
	"github.com/foodmap/internal/metrics"
	"github.com/foodmap/internal/services"
	"github.com/foodmap/pkg/utils"
)

// Dependencies 路由需要的服务，由 main 构造后注入
type Dependencies struct {
	Config        configs.Configuration
	Resources     services.ResourceService
	Verification  services.VerificationService
	Submissions   services.SubmissionService
	Geocoder      handlers.ZipGeocoder
	HealthChecker func() error
}

// SetupRoutes 初始化所有路由
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/healthz", healthHandler(deps.HealthChecker))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	base := deps.Config.APIBase
	if base == "" {
		base = "/api"
	}
	api := router.Group(base)
	adminOnly := auth.RequireAdmin(deps.Config)

	SetupAuthRoutes(api, handlers.NewAuthHandler(deps.Config))
	SetupResourceRoutes(api, deps, adminOnly)
	SetupSubmissionRoutes(api, handlers.NewSubmissionHandler(deps.Submissions), adminOnly)

	geocodeHandler := handlers.NewGeocodeHandler(deps.Geocoder)
	api.GET("/geocode/zip/:zip", geocodeHandler.LookupZip)

	router.NoRoute(func(c *gin.Context) {
		utils.RespondError(c, http.StatusNotFound, "Not found", c.Request.URL.Path)
	})
}

// SetupResourceRoutes 资源查询、反馈与审核。
// 静态路径 flagged / needs-verification 与 :id 共存，gin 优先匹配静态段。
func SetupResourceRoutes(api *gin.RouterGroup, deps Dependencies, adminOnly gin.HandlerFunc) {
	resourceHandler := handlers.NewResourceHandler(deps.Resources, deps.Geocoder)
	verificationHandler := handlers.NewVerificationHandler(deps.Verification, deps.Config.StaleDays)

	resources := api.Group("/resources")
	{
		resources.GET("", resourceHandler.ListResources)
		resources.POST("", resourceHandler.CreateResource)
		resources.GET("/flagged", adminOnly, verificationHandler.ListFlagged)
		resources.GET("/needs-verification", adminOnly, verificationHandler.NeedsVerification)
		resources.GET("/:id", resourceHandler.GetResource)
		resources.POST("/:id/report", verificationHandler.ReportResource)
		resources.GET("/:id/reports", adminOnly, verificationHandler.ListReports)
		resources.POST("/:id/verify", adminOnly, verificationHandler.VerifyResource)
		resources.DELETE("/:id", adminOnly, verificationHandler.DeleteResource)
	}
}

// SetupSubmissionRoutes 提交是公开的，列表仅限管理员
func SetupSubmissionRoutes(api *gin.RouterGroup, h *handlers.SubmissionHandler, adminOnly gin.HandlerFunc) {
	submissions := api.Group("/submissions")
	{
		submissions.POST("", h.CreateSubmission)
		submissions.GET("", adminOnly, h.ListSubmissions)
	}
}

func healthHandler(check func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			if err := check(); err != nil {
				logger.L().Error("health_check_failed", "err", err)
				utils.RespondServiceUnavailableError(c, "Storage unavailable")
				return
			}
		}
		utils.RespondSuccess(c, http.StatusOK, gin.H{"ok": true}, "")
	}
}
