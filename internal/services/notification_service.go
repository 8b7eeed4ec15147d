package services

import (
	"context"

	"github.com/SketchShifter/social_backend/internal/metrics"
	"github.com/SketchShifter/social_backend/internal/models"
	"github.com/SketchShifter/social_backend/internal/repository"
)

// NotificationService 通知に関するサービスインターフェース
type NotificationService interface {
	FetchAndMarkRead(ctx context.Context, userID uint) ([]models.Notification, error)
	ClearFor(ctx context.Context, userID uint) (int64, error)
}

// notificationService NotificationServiceの実装
type notificationService struct {
	notificationRepo repository.NotificationRepository
	metrics          *metrics.Metrics
}

// NewNotificationService NotificationServiceを作成
func NewNotificationService(notificationRepo repository.NotificationRepository, m *metrics.Metrics) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		metrics:          m,
	}
}

// FetchAndMarkRead 通知一覧を取得し、取得した通知を既読にする。
// 返す通知は既読化する前の状態。
func (s *notificationService) FetchAndMarkRead(ctx context.Context, userID uint) ([]models.Notification, error) {
	notifications, err := s.notificationRepo.ListByRecipient(ctx, userID)
	if err != nil {
		return nil, err
	}

	unread := make([]uint, 0, len(notifications))
	for _, n := range notifications {
		if !n.Read {
			unread = append(unread, n.ID)
		}
	}

	if err := s.notificationRepo.MarkRead(ctx, userID, unread); err != nil {
		return nil, err
	}
	s.metrics.NotificationsRead.Add(float64(len(unread)))

	return notifications, nil
}

// ClearFor 通知を全て削除
func (s *notificationService) ClearFor(ctx context.Context, userID uint) (int64, error) {
	deleted, err := s.notificationRepo.DeleteByRecipient(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.metrics.NotificationsCleared.Add(float64(deleted))
	return deleted, nil
}
