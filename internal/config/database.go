package config

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newGormLogger GORMのログをlogrusへ転送
func newGormLogger(log *logrus.Entry, level string) logger.Interface {
	logLevel := logger.Warn
	if level == "debug" {
		logLevel = logger.Info
	}

	return logger.New(
		log.WithField("component", "gorm"),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true, // 未登録ユーザーの参照は通常フロー
			Colorful:                  false,
		},
	)
}

// DSN MySQL接続文字列を生成
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.DBName)
}

// InitDB データベース接続を初期化
func InitDB(cfg *Config, log *logrus.Entry) (*gorm.DB, error) {
	log.WithFields(logrus.Fields{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
		"db":   cfg.Database.DBName,
	}).Info("データベースに接続中")

	gormConfig := &gorm.Config{
		Logger: newGormLogger(log, cfg.LogLevel),
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), gormConfig)
	if err != nil {
		return nil, err
	}

	// 接続プールの設定
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// 接続テスト
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("データベース接続テストに失敗: %w", err)
	}

	log.Info("データベース接続に成功しました")

	return db, nil
}
