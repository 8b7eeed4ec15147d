package services

import (
	"context"
	"time"
)

// Pinger 疎通確認が可能な依存先
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthStatus ヘルスステータス
type HealthStatus struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Database  string `json:"database"`
}

// HealthService ヘルスチェックに関するサービスインターフェース
type HealthService interface {
	GetStatus(ctx context.Context) HealthStatus
}

// healthService HealthServiceの実装
type healthService struct {
	startTime time.Time
	db        Pinger
	version   string
}

// NewHealthService HealthServiceを作成
func NewHealthService(db Pinger, version string) HealthService {
	return &healthService{
		startTime: time.Now(),
		db:        db,
		version:   version,
	}
}

// GetStatus サービスのステータスを取得
func (s *healthService) GetStatus(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   s.version,
		Database:  "ok",
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		status.Status = "degraded"
		status.Database = "unreachable"
	}

	return status
}
