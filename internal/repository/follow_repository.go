package repository

import (
	"context"

	"github.com/SketchShifter/social_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository フォロー関係に関するデータベース操作を行うインターフェース
type FollowRepository interface {
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	SetFollowState(ctx context.Context, actorID, targetID uint, follow bool) (bool, error)
}

// followRepository FollowRepositoryの実装
type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository FollowRepositoryを作成
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// IsFollowing フォロー中か確認
func (r *followRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SetFollowState フォロー辺の追加/削除と通知作成を1トランザクションで行う。
// 状態が実際に変化した場合は true を返す。
func (r *followRepository) SetFollowState(ctx context.Context, actorID, targetID uint, follow bool) (bool, error) {
	changed := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !follow {
			result := tx.Where("follower_id = ? AND following_id = ?", actorID, targetID).
				Delete(&models.Follow{})
			if result.Error != nil {
				return result.Error
			}
			changed = result.RowsAffected > 0
			return nil
		}

		// 同時リクエストで既に辺がある場合は何もしない（通知も作らない）
		result := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Follow{FollowerID: actorID, FollowingID: targetID})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		changed = true

		notification := &models.Notification{
			Type:   models.NotificationFollow,
			FromID: actorID,
			ToID:   targetID,
		}
		return tx.Omit(clause.Associations).Create(notification).Error
	})
	if err != nil {
		return false, err
	}

	return changed, nil
}
