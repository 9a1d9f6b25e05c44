package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/foodmap/configs"
	"github.com/foodmap/docs"
	"github.com/foodmap/internal/logger"
	"github.com/foodmap/internal/metrics"
	"github.com/foodmap/internal/reporting"
	"github.com/foodmap/internal/repositories"
	"github.com/foodmap/internal/routes"
	"github.com/foodmap/internal/services"
	"github.com/foodmap/pkg/db"
	"github.com/foodmap/pkg/email"
	"github.com/foodmap/pkg/geocode"
)

// @title           DFW Food Map API
// @version         1.0
// @description     Community food-resource locator: resources, reports, verification and submissions.
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// .env 不存在时忽略，生产环境直接使用进程环境变量
	_ = godotenv.Load()
	l := logger.Setup()

	configs.LoadConfig()
	cfg := configs.AppConfig

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 存储
	store := repositories.NewMemoryResourceStore()
	healthCheck := func() error { return nil }
	if cfg.DatabaseURL != "" {
		gdb, err := db.InitDB(cfg.DatabaseURL)
		if err != nil {
			l.Error("database_init_failed", "backend", db.DetectBackend(cfg.DatabaseURL), "err", err)
			os.Exit(1)
		}
		defer db.CloseDB(gdb)
		store = repositories.NewGormResourceStore(gdb)
		healthCheck = func() error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return sqlDB.PingContext(pingCtx)
		}
	}
	l.Info("storage_selected", "backend", db.DetectBackend(cfg.DatabaseURL))

	// 地理编码：优先 Redis 缓存
	redisClient, err := geocode.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		l.Warn("redis_unavailable", "addr", cfg.RedisAddr, "err", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	geocoder := geocode.New(geocode.Options{
		APIKey:  cfg.GeoapifyAPIKey,
		Timeout: cfg.GeocodeTimeout,
		Cache:   geocode.NewCache(redisClient),
	})

	// 邮件通知
	smtpCfg, err := email.LoadSMTPConfigFromEnv()
	if err != nil {
		l.Info("email_disabled", "reason", err.Error())
	}
	notifier := email.NewNotifier(smtpCfg, cfg.AdminEmail, cfg.AppURL)

	resourceService := services.NewResourceService(store)
	verificationService := services.NewVerificationService(store)
	submissionService := services.NewSubmissionService(store, notifier)

	if cfg.VerificationSchedule == "weekly" {
		reporting.StartWeekly(ctx, verificationService, cfg.StaleDays, cfg.VerificationHour, time.Local)
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), logger.GinAccess(l), metrics.GinMiddleware())

	docs.SwaggerInfo.BasePath = cfg.APIBase
	routes.SetupRoutes(router, routes.Dependencies{
		Config:        cfg,
		Resources:     resourceService,
		Verification:  verificationService,
		Submissions:   submissionService,
		Geocoder:      geocoder,
		HealthChecker: healthCheck,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		l.Info("server_starting", "port", cfg.ServerPort, "api_base", cfg.APIBase, "admin_auth", cfg.AdminAuthEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("server_failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	l.Info("server_shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("server_shutdown_error", "err", err)
	}
	services.WaitForNotifications(submissionService)
	l.Info("server_stopped")
}
