package config

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// InitRedis Redisクライアントを初期化（REDIS_ADDR未設定時はnil）
func InitRedis(cfg *Config, log *logrus.Entry) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		log.Warn("REDIS_ADDRが未設定のため、トークン失効リストは無効です")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("Redis接続テストに失敗: %w", err)
	}

	log.WithField("addr", cfg.Redis.Addr).Info("Redisに接続しました")
	return rdb, nil
}

// InitNATS NATS接続を初期化（NATS_URL未設定時はnil）
func InitNATS(cfg *Config, log *logrus.Entry) (*nats.Conn, error) {
	if cfg.NATS.URL == "" {
		log.Warn("NATS_URLが未設定のため、イベント配信は無効です")
		return nil, nil
	}

	nc, err := nats.Connect(cfg.NATS.URL,
		nats.Name("social-backend"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Warn("NATSから切断されました")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.WithField("url", c.ConnectedUrl()).Info("NATSに再接続しました")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("NATS接続に失敗: %w", err)
	}

	log.WithField("url", cfg.NATS.URL).Info("NATSに接続しました")
	return nc, nil
}
