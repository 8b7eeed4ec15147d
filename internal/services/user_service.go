package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SketchShifter/social_backend/internal/models"
	"github.com/SketchShifter/social_backend/internal/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService ユーザーに関するサービスインターフェース
type UserService interface {
	GetProfile(ctx context.Context, username string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.User, error)
	UpdateProfile(ctx context.Context, userID uint, input UpdateProfileInput) (*models.User, error)
}

// UpdateProfileInput プロフィール更新内容（空のフィールドは変更しない）
type UpdateProfileInput struct {
	FullName        string
	Email           string
	Username        string
	Bio             string
	Link            string
	CurrentPassword string
	NewPassword     string
	ProfileImg      string // data URI
	CoverImg        string // data URI
}

// userService UserServiceの実装
type userService struct {
	userRepo repository.UserRepository
	media    MediaService
	log      *logrus.Entry
}

// NewUserService UserServiceを作成
func NewUserService(userRepo repository.UserRepository, media MediaService, log *logrus.Entry) UserService {
	return &userService{
		userRepo: userRepo,
		media:    media,
		log:      log,
	}
}

// GetProfile ユーザー名でプロフィールを取得
func (s *userService) GetProfile(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "ユーザーが見つかりません")
		}
		return nil, err
	}
	stripped := user.Strip()
	return &stripped, nil
}

// GetByIDs 複数ユーザーを一括取得
func (s *userService) GetByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, newError(ErrNotFound, "指定されたIDのユーザーが見つかりません")
	}

	stripped := make([]models.User, len(users))
	for i, u := range users {
		stripped[i] = u.Strip()
	}
	return stripped, nil
}

// UpdateProfile プロフィールを更新
func (s *userService) UpdateProfile(ctx context.Context, userID uint, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "ユーザーが見つかりません")
		}
		return nil, err
	}

	// パスワード変更は現在のパスワードと新しいパスワードの両方が必要
	if (input.NewPassword == "") != (input.CurrentPassword == "") {
		return nil, newError(ErrValidation, "現在のパスワードと新しいパスワードの両方を入力してください")
	}
	if input.CurrentPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.CurrentPassword)); err != nil {
			return nil, newError(ErrAuth, "現在のパスワードが正しくありません")
		}
		if len(input.NewPassword) < minPasswordLength {
			return nil, newError(ErrValidation, fmt.Sprintf("パスワードは%d文字以上で入力してください", minPasswordLength))
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hashed)
	}

	if err := s.checkIdentity(ctx, user, strings.TrimSpace(input.Username), strings.TrimSpace(input.Email)); err != nil {
		return nil, err
	}

	// 画像は検証が済んでからアップロードし、保存後に古い画像を削除する
	var uploaded, replaced []string
	for _, img := range []struct {
		data  string
		field *string
	}{
		{input.ProfileImg, &user.ProfileImage},
		{input.CoverImg, &user.CoverImage},
	} {
		if img.data == "" {
			continue
		}
		url, err := s.media.Upload(ctx, img.data)
		if err != nil {
			s.discardImages(ctx, uploaded)
			return nil, err
		}
		uploaded = append(uploaded, url)
		if *img.field != "" {
			replaced = append(replaced, *img.field)
		}
		*img.field = url
	}

	user.FullName = firstNonEmpty(input.FullName, user.FullName)
	user.Email = firstNonEmpty(strings.TrimSpace(input.Email), user.Email)
	user.Username = firstNonEmpty(strings.TrimSpace(input.Username), user.Username)
	user.Bio = firstNonEmpty(input.Bio, user.Bio)
	user.Link = firstNonEmpty(input.Link, user.Link)

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.discardImages(ctx, uploaded)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(ErrConflict, "ユーザー名またはメールアドレスは既に使用されています")
		}
		return nil, err
	}

	// 古い画像が残っても更新は成功扱い
	s.discardImages(ctx, replaced)

	stripped := user.Strip()
	return &stripped, nil
}

// checkIdentity ユーザー名・メールアドレス変更時の検証
func (s *userService) checkIdentity(ctx context.Context, user *models.User, username, email string) error {
	if username != "" && username != user.Username {
		if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
			return newError(ErrConflict, "このユーザー名は既に使用されています")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	if email != "" && email != user.Email {
		if err := validate.Var(email, "email"); err != nil {
			return newError(ErrValidation, "メールアドレスの形式が正しくありません")
		}
		if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
			return newError(ErrConflict, "このメールアドレスは既に使用されています")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	return nil
}

// discardImages 画像を削除する（失敗はログのみ）
func (s *userService) discardImages(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.media.Delete(ctx, url); err != nil {
			s.log.WithError(err).WithField("url", url).Warn("画像の削除に失敗しました")
		}
	}
}

func firstNonEmpty(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
