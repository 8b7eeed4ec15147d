package services

import (
	"context"
	"fmt"

	"github.com/SketchShifter/social_backend/internal/config"
	"github.com/SketchShifter/social_backend/internal/utils"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// MediaService プロフィール画像・カバー画像の保存先
type MediaService interface {
	// Upload data URI（またはCloudinaryが取得可能なURL）をアップロードし公開URLを返す
	Upload(ctx context.Context, data string) (string, error)
	// Delete 公開URLで指定した画像を削除
	Delete(ctx context.Context, imageURL string) error
}

// NewMediaService 設定に応じたMediaServiceを作成
func NewMediaService(cfg *config.Config) (MediaService, error) {
	switch cfg.Media.Provider {
	case "s3":
		return NewS3MediaService(cfg)
	case "", "cloudinary":
		return NewCloudinaryService(cfg)
	default:
		return nil, fmt.Errorf("不明なメディアプロバイダです: %s", cfg.Media.Provider)
	}
}

type cloudinaryService struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryService Cloudinary版MediaServiceを作成
func NewCloudinaryService(cfg *config.Config) (MediaService, error) {
	cld, err := cloudinary.NewFromParams(
		cfg.Media.Cloudinary.CloudName,
		cfg.Media.Cloudinary.APIKey,
		cfg.Media.Cloudinary.APISecret,
	)
	if err != nil {
		return nil, err
	}
	cld.Config.URL.Secure = true

	return &cloudinaryService{
		cld:    cld,
		folder: cfg.Media.Cloudinary.Folder,
	}, nil
}

// Upload 画像をアップロード
func (s *cloudinaryService) Upload(ctx context.Context, data string) (string, error) {
	uploadParams := uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     uuid.NewString(),
		ResourceType: "image",
	}

	result, err := s.cld.Upload.Upload(ctx, data, uploadParams)
	if err != nil {
		return "", fmt.Errorf("Cloudinaryへのアップロードに失敗しました: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("Cloudinaryへのアップロードに失敗しました: %s", result.Error.Message)
	}

	return result.SecureURL, nil
}

// Delete 画像を削除
func (s *cloudinaryService) Delete(ctx context.Context, imageURL string) error {
	publicID := utils.CloudinaryPublicID(imageURL, s.folder)
	if publicID == "" {
		return nil
	}

	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("Cloudinaryからの削除に失敗しました: %w", err)
	}

	return nil
}
