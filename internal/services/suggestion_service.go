package services

import (
	"context"
	"errors"

	"github.com/SketchShifter/social_backend/internal/models"
	"github.com/SketchShifter/social_backend/internal/repository"

	"gorm.io/gorm"
)

// UserSampler excludeID以外のユーザーを無作為にn件返す
type UserSampler interface {
	SampleExcluding(ctx context.Context, excludeID uint, n int) ([]models.User, error)
}

// SuggestionService おすすめユーザーに関するサービスインターフェース
type SuggestionService interface {
	Suggest(ctx context.Context, requesterID uint) ([]models.User, error)
}

// suggestionService SuggestionServiceの実装
type suggestionService struct {
	userRepo   repository.UserRepository
	sampler    UserSampler
	sampleSize int
	limit      int
}

// NewSuggestionService SuggestionServiceを作成
func NewSuggestionService(userRepo repository.UserRepository, sampler UserSampler, sampleSize, limit int) SuggestionService {
	return &suggestionService{
		userRepo:   userRepo,
		sampler:    sampler,
		sampleSize: sampleSize,
		limit:      limit,
	}
}

// Suggest 無作為抽出したユーザーからフォロー済みを除き、先頭limit件を返す。
// 抽出後に絞り込むため、limit件に満たない（0件もあり得る）。
func (s *suggestionService) Suggest(ctx context.Context, requesterID uint) ([]models.User, error) {
	requester, err := s.userRepo.FindByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "ユーザーが見つかりません")
		}
		return nil, err
	}

	sampled, err := s.sampler.SampleExcluding(ctx, requester.ID, s.sampleSize)
	if err != nil {
		return nil, err
	}

	suggested := make([]models.User, 0, s.limit)
	for _, u := range sampled {
		if len(suggested) == s.limit {
			break
		}
		if u.ID == requester.ID {
			continue
		}
		if requester.IsFollowing(u.ID) {
			continue
		}
		suggested = append(suggested, u.Strip())
	}

	return suggested, nil
}
