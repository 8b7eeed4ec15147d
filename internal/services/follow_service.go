package services

import (
	"context"
	"errors"

	"github.com/SketchShifter/social_backend/internal/metrics"
	"github.com/SketchShifter/social_backend/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// FollowState トグル後のフォロー状態
type FollowState string

const (
	StateFollowed   FollowState = "followed"
	StateUnfollowed FollowState = "unfollowed"
)

// FollowService フォロー/フォロー解除に関するサービスインターフェース
type FollowService interface {
	ToggleFollow(ctx context.Context, actorID, targetID uint) (FollowState, error)
}

// followService FollowServiceの実装
type followService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	events     EventPublisher
	metrics    *metrics.Metrics
	log        *logrus.Entry
}

// NewFollowService FollowServiceを作成
func NewFollowService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	events EventPublisher,
	m *metrics.Metrics,
	log *logrus.Entry,
) FollowService {
	return &followService{
		userRepo:   userRepo,
		followRepo: followRepo,
		events:     events,
		metrics:    m,
		log:        log,
	}
}

// ToggleFollow 未フォローならフォロー、フォロー中ならフォロー解除する
func (s *followService) ToggleFollow(ctx context.Context, actorID, targetID uint) (FollowState, error) {
	if actorID == targetID {
		return "", newError(ErrSelfReference, "自分自身をフォロー/フォロー解除することはできません")
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return "", s.lookupError(err)
	}
	actor, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return "", s.lookupError(err)
	}

	following, err := s.followRepo.IsFollowing(ctx, actor.ID, target.ID)
	if err != nil {
		return "", err
	}
	follow := !following

	changed, err := s.followRepo.SetFollowState(ctx, actor.ID, target.ID, follow)
	if err != nil {
		return "", err
	}

	state := StateUnfollowed
	if follow {
		state = StateFollowed
	}

	entry := s.log.WithFields(logrus.Fields{
		"actor_id":  actor.ID,
		"target_id": target.ID,
		"state":     state,
	})

	// 同時リクエストで既に同じ状態になっていた場合は何も配信しない
	if !changed {
		entry.Debug("フォロー状態は既に反映済みです")
		return state, nil
	}

	s.metrics.FollowToggles.WithLabelValues(string(state)).Inc()

	if follow {
		err = s.events.PublishFollowed(ctx, actor.ID, target.ID)
	} else {
		err = s.events.PublishUnfollowed(ctx, actor.ID, target.ID)
	}
	if err != nil {
		// イベント配信はコミット後のベストエフォート
		entry.WithError(err).Warn("フォローイベントの配信に失敗しました")
	}

	entry.Info("フォロー状態を更新しました")
	return state, nil
}

func (s *followService) lookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newError(ErrNotFound, "ユーザーが見つかりません")
	}
	return err
}
