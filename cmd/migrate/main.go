package main

import (
	"os"

	"github.com/SketchShifter/social_backend/internal/config"
	"github.com/SketchShifter/social_backend/internal/logger"
	"github.com/SketchShifter/social_backend/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// schema 作成順（削除はこの逆順）
var schema = []interface{}{
	&models.User{},
	&models.Follow{},
	&models.Notification{},
}

func main() {
	log := logger.New("social-migrate", "info")

	if len(os.Args) < 2 {
		log.Fatal("使用方法: migrate [up|down|status]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	db, err := config.InitDB(cfg, log)
	if err != nil {
		log.Fatalf("データベース接続に失敗しました: %v", err)
	}

	switch command := os.Args[1]; command {
	case "up":
		if err := db.AutoMigrate(schema...); err != nil {
			log.Fatalf("マイグレーションに失敗しました: %v", err)
		}
		log.Info("マイグレーションが成功しました")

	case "down":
		if err := db.Migrator().DropTable(reversed(schema)...); err != nil {
			log.Fatalf("テーブル削除に失敗しました: %v", err)
		}
		log.Info("テーブルの削除が成功しました")

	case "status":
		printStatus(db, log)

	default:
		log.Fatalf("不明なコマンドです: %s", command)
	}
}

// printStatus 各テーブルの有無を出力
func printStatus(db *gorm.DB, log *logrus.Entry) {
	stmt := &gorm.Statement{DB: db}
	for _, model := range schema {
		if err := stmt.Parse(model); err != nil {
			log.Fatalf("モデルの解析に失敗しました: %v", err)
		}
		log.WithFields(logrus.Fields{
			"table":  stmt.Schema.Table,
			"exists": db.Migrator().HasTable(model),
		}).Info("テーブル")
	}
}

func reversed(items []interface{}) []interface{} {
	out := make([]interface{}, len(items))
	for i, m := range items {
		out[len(items)-1-i] = m
	}
	return out
}
