package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevoker ログアウト済みトークンの失効リスト
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// redisTokenRevoker TokenRevokerのRedis実装
type redisTokenRevoker struct {
	client *redis.Client
}

// NewTokenRevoker TokenRevokerを作成（client が nil の場合は何もしない実装）
func NewTokenRevoker(client *redis.Client) TokenRevoker {
	if client == nil {
		return noopTokenRevoker{}
	}
	return &redisTokenRevoker{client: client}
}

func revokedKey(tokenID string) string {
	return "auth:revoked:" + tokenID
}

// Revoke トークンを有効期限まで失効させる
func (r *redisTokenRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKey(tokenID), 1, ttl).Err()
}

// IsRevoked 失効済みか確認
func (r *redisTokenRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type noopTokenRevoker struct{}

func (noopTokenRevoker) Revoke(context.Context, string, time.Duration) error { return nil }

func (noopTokenRevoker) IsRevoked(context.Context, string) (bool, error) { return false, nil }
