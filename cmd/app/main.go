package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SketchShifter/social_backend/internal/config"
	"github.com/SketchShifter/social_backend/internal/logger"
	"github.com/SketchShifter/social_backend/internal/routes"
	"github.com/SketchShifter/social_backend/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// 設定をロード
	cfg, err := config.Load()
	if err != nil {
		logger.New("social-backend", "info").Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	log := logger.New("social-backend", cfg.LogLevel)
	log.Info("サーバーを起動しています...")

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// データベース接続
	db, err := config.InitDB(cfg, log)
	if err != nil {
		log.Fatalf("データベース接続に失敗しました: %v", err)
	}

	// Redis（任意）
	rdb, err := config.InitRedis(cfg, log)
	if err != nil {
		log.Fatalf("Redis接続に失敗しました: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// NATS（任意）
	nc, err := config.InitNATS(cfg, log)
	if err != nil {
		log.Fatalf("NATS接続に失敗しました: %v", err)
	}
	if nc != nil {
		defer nc.Drain()
	}

	// 画像ストレージ
	media, err := services.NewMediaService(cfg)
	if err != nil {
		log.Fatalf("メディアサービスの初期化に失敗しました: %v", err)
	}

	// ルーターをセットアップ
	router, err := routes.SetupRouter(cfg, routes.Dependencies{
		DB:    db,
		Redis: rdb,
		NATS:  nc,
		Media: media,
		Log:   log,
	})
	if err != nil {
		log.Fatalf("ルーターの初期化に失敗しました: %v", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("サーバーを開始しています...")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("サーバーの起動に失敗しました: %v", err)
		}
	}()

	// シグナルを待ってグレースフルシャットダウン
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("サーバーを停止しています...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("シャットダウンに失敗しました")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("サーバーを停止しました")
}
