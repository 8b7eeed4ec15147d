package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/SketchShifter/social_backend/internal/config"
	"github.com/SketchShifter/social_backend/internal/utils"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
)

const s3KeyPrefix = "profiles/"

// s3MediaService S3互換ストレージ（Cloudflare R2等）版MediaService
type s3MediaService struct {
	client   *s3.S3
	uploader *s3manager.Uploader
	bucket   string
	baseURL  string
}

// NewS3MediaService S3版MediaServiceを作成
func NewS3MediaService(cfg *config.Config) (MediaService, error) {
	if cfg.Media.S3.Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKETが設定されていません")
	}

	awsCfg := &aws.Config{
		Region: aws.String(cfg.Media.S3.Region),
	}
	if cfg.Media.S3.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Media.S3.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("AWSセッションの作成に失敗しました: %w", err)
	}

	return &s3MediaService{
		client:   s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		bucket:   cfg.Media.S3.Bucket,
		baseURL:  strings.TrimSuffix(cfg.Media.S3.BaseURL, "/"),
	}, nil
}

// Upload data URIをデコードしてアップロード
func (s *s3MediaService) Upload(ctx context.Context, data string) (string, error) {
	decoded, err := utils.DecodeDataURI(data)
	if err != nil {
		return "", newError(ErrValidation, "画像はdata URI形式で指定してください")
	}

	key := s3KeyPrefix + uuid.NewString() + decoded.Extension()

	output, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(decoded.Data),
		ContentType: aws.String(decoded.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("S3へのアップロードに失敗しました: %w", err)
	}

	if s.baseURL != "" {
		return s.baseURL + "/" + key, nil
	}
	return output.Location, nil
}

// Delete 画像を削除
func (s *s3MediaService) Delete(ctx context.Context, imageURL string) error {
	key := utils.ObjectKeyFromURL(imageURL, s.baseURL, s.bucket)
	if key == "" {
		return nil
	}

	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("S3からの削除に失敗しました: %w", err)
	}

	return nil
}
