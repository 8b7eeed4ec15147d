package routes

import (
	"github.com/SketchShifter/social_backend/internal/config"
	"github.com/SketchShifter/social_backend/internal/controllers"
	"github.com/SketchShifter/social_backend/internal/metrics"
	"github.com/SketchShifter/social_backend/internal/middlewares"
	"github.com/SketchShifter/social_backend/internal/repository"
	"github.com/SketchShifter/social_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Version アプリケーションバージョン
const Version = "1.0.0"

// Dependencies ルーターが利用する外部接続
type Dependencies struct {
	DB    *gorm.DB
	Redis *redis.Client // nil可
	NATS  *nats.Conn    // nil可
	Media services.MediaService
	Log   *logrus.Entry
}

// SetupRouter ルーターを設定
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	log := deps.Log

	sqlDB, err := deps.DB.DB()
	if err != nil {
		return nil, err
	}

	// メトリクス
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(sqlDB, cfg.Database.DBName),
	)
	m := metrics.New(registry)

	r := gin.New()

	// ミドルウェアを設定
	r.Use(middlewares.RequestIDMiddleware())
	r.Use(middlewares.ErrorMiddleware(log))
	r.Use(middlewares.LoggerMiddleware(log))
	r.Use(middlewares.MetricsMiddleware(m))
	r.Use(middlewares.CORSMiddleware(cfg.Server.AllowedOrigin))
	r.Use(middlewares.BodyLimitMiddleware(cfg.Server.MaxBodyBytes))

	// リポジトリを作成
	userRepo := repository.NewUserRepository(deps.DB)
	followRepo := repository.NewFollowRepository(deps.DB)
	notificationRepo := repository.NewNotificationRepository(deps.DB)

	// サービスを作成
	revoker := services.NewTokenRevoker(deps.Redis)
	events := services.NewEventPublisher(deps.NATS, cfg.NATS.SubjectPrefix)

	authService := services.NewAuthService(userRepo, revoker, cfg)
	userService := services.NewUserService(userRepo, deps.Media, log)
	followService := services.NewFollowService(userRepo, followRepo, events, m, log)
	suggestionService := services.NewSuggestionService(userRepo, userRepo, cfg.Suggestion.SampleSize, cfg.Suggestion.Limit)
	notificationService := services.NewNotificationService(notificationRepo, m)
	healthService := services.NewHealthService(sqlDB, Version)

	// コントローラーを作成
	authController := controllers.NewAuthController(authService, services.NewGoogleProvider(cfg.Google), cfg, log)
	userController := controllers.NewUserController(userService, followService, suggestionService, log)
	notificationController := controllers.NewNotificationController(notificationService, log)
	healthController := controllers.NewHealthController(healthService)

	// 認証ミドルウェア
	authMiddleware := middlewares.AuthMiddleware(authService, cfg.Auth.CookieName)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	{
		// ヘルスチェックルート（認証不要）
		api.GET("/health", healthController.Check)

		// 認証ルート
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authController.Signup)
			auth.POST("/login", authController.Login)
			auth.POST("/logout", authController.Logout)
			auth.GET("/google", authController.GoogleLogin)
			auth.GET("/google/callback", authController.GoogleCallback)
			auth.GET("/me", authMiddleware, authController.GetMe)
		}

		// ユーザールート
		users := api.Group("/users", authMiddleware)
		{
			users.GET("/profile/:username", userController.GetProfile)
			users.GET("/suggested", userController.GetSuggested)
			users.POST("/connections/:action", userController.Connections)
			users.POST("/follow/:id", userController.FollowUnfollow)
			users.POST("/update", userController.UpdateProfile)
		}

		// 通知ルート
		notifications := api.Group("/notifications", authMiddleware)
		{
			notifications.GET("", notificationController.List)
			notifications.DELETE("", notificationController.Clear)
		}
	}

	return r, nil
}
