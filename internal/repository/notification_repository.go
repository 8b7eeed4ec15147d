package repository

import (
	"context"

	"github.com/SketchShifter/social_backend/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository 通知に関するデータベース操作を行うインターフェース
type NotificationRepository interface {
	ListByRecipient(ctx context.Context, userID uint) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID uint, ids []uint) error
	DeleteByRecipient(ctx context.Context, userID uint) (int64, error)
}

// notificationRepository NotificationRepositoryの実装
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository NotificationRepositoryを作成
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// ListByRecipient 宛先ユーザーの通知一覧を取得（送信者を展開）
func (r *notificationRepository) ListByRecipient(ctx context.Context, userID uint) ([]models.Notification, error) {
	notifications := []models.Notification{}
	if err := r.db.WithContext(ctx).
		Where("to_id = ?", userID).
		Preload("From", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "profile_image")
		}).
		Order("id").
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead 指定した通知を既読にする
func (r *notificationRepository) MarkRead(ctx context.Context, userID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("to_id = ? AND id IN ?", userID, ids).
		Update("read", true).Error
}

// DeleteByRecipient 宛先ユーザーの通知を全て削除し、削除件数を返す
func (r *notificationRepository) DeleteByRecipient(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("to_id = ?", userID).Delete(&models.Notification{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
