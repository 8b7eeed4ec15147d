package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SketchShifter/social_backend/internal/config"
	"github.com/SketchShifter/social_backend/internal/models"
	"github.com/SketchShifter/social_backend/internal/repository"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

var validate = validator.New()

// AuthService 認証に関するサービスインターフェース
type AuthService interface {
	Signup(ctx context.Context, fullName, username, email, password string) (*models.User, string, error)
	Login(ctx context.Context, username, password string) (*models.User, string, error)
	LoginWithOAuth(ctx context.Context, profile *OAuthProfile) (*models.User, string, error)
	Logout(ctx context.Context, tokenString string) error
	VerifyCredential(ctx context.Context, username, password string) (*models.User, error)
	ResolveUser(ctx context.Context, id uint) (*models.User, error)
	ValidateToken(tokenString string) (*Claims, error)
	GetUserFromToken(ctx context.Context, tokenString string) (*models.User, error)
}

// authService AuthServiceの実装
type authService struct {
	userRepo repository.UserRepository
	revoker  TokenRevoker
	config   *config.Config
}

// NewAuthService AuthServiceを作成
func NewAuthService(userRepo repository.UserRepository, revoker TokenRevoker, cfg *config.Config) AuthService {
	return &authService{
		userRepo: userRepo,
		revoker:  revoker,
		config:   cfg,
	}
}

// Claims JWTのペイロード
type Claims struct {
	UserID uint `json:"user_id"`
	jwt.StandardClaims
}

// Signup ユーザー登録
func (s *authService) Signup(ctx context.Context, fullName, username, email, password string) (*models.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if err := validate.Var(email, "required,email"); err != nil {
		return nil, "", newError(ErrValidation, "メールアドレスの形式が正しくありません")
	}
	if username == "" {
		return nil, "", newError(ErrValidation, "ユーザー名は必須です")
	}

	// ユーザー名・メールアドレスの重複確認
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, "", newError(ErrConflict, "このユーザー名は既に使用されています")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, "", newError(ErrConflict, "このメールアドレスは既に使用されています")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	if len(password) < minPasswordLength {
		return nil, "", newError(ErrValidation, fmt.Sprintf("パスワードは%d文字以上で入力してください", minPasswordLength))
	}

	// パスワードをハッシュ化
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		FullName: strings.TrimSpace(fullName),
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", newError(ErrConflict, "ユーザー名またはメールアドレスは既に使用されています")
		}
		return nil, "", err
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	stripped := user.Strip()
	return &stripped, token, nil
}

// Login ログイン
func (s *authService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.VerifyCredential(ctx, username, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// LoginWithOAuth 外部プロフィールのメールアドレスでユーザーを検索し、無ければ作成する
func (s *authService) LoginWithOAuth(ctx context.Context, profile *OAuthProfile) (*models.User, string, error) {
	if profile == nil || profile.Email == "" || !profile.EmailVerified {
		return nil, "", newError(ErrAuth, "確認済みのメールアドレスが必要です")
	}
	email := strings.TrimSpace(profile.Email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user, err = s.createOAuthUser(ctx, email, profile)
	}
	if err != nil {
		return nil, "", err
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	stripped := user.Strip()
	return &stripped, token, nil
}

// createOAuthUser パスワードログインできないユーザーを作成
func (s *authService) createOAuthUser(ctx context.Context, email string, profile *OAuthProfile) (*models.User, error) {
	username, err := s.availableUsername(ctx, usernameFromEmail(email))
	if err != nil {
		return nil, err
	}

	// ランダムな値のハッシュ（パスワードでは一致しない）
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FullName:     strings.TrimSpace(profile.Name),
		Username:     username,
		Email:        email,
		Password:     string(hashedPassword),
		ProfileImage: profile.Picture,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(ErrConflict, "ユーザー名またはメールアドレスは既に使用されています")
		}
		return nil, err
	}
	return user, nil
}

// availableUsername 使用されていなければbase、使用済みなら接尾辞を付ける
func (s *authService) availableUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 0; i < 5; i++ {
		_, err := s.userRepo.FindByUsername(ctx, candidate)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s_%s", base, uuid.NewString()[:6])
	}
	return "", newError(ErrConflict, "ユーザー名を決定できませんでした")
}

// usernameFromEmail メールアドレスのローカル部から英数字・._のみを残す
func usernameFromEmail(email string) string {
	local := strings.ToLower(email)
	if i := strings.IndexByte(local, '@'); i >= 0 {
		local = local[:i]
	}
	var b strings.Builder
	for _, r := range local {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}

// Logout トークンを有効期限まで失効させる
func (s *authService) Logout(ctx context.Context, tokenString string) error {
	if tokenString == "" {
		return nil
	}
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		// 既に無効なトークンは失効させる必要がない
		return nil
	}
	ttl := time.Until(time.Unix(claims.ExpiresAt, 0))
	return s.revoker.Revoke(ctx, claims.Id, ttl)
}

// VerifyCredential ユーザー名とパスワードを検証
func (s *authService) VerifyCredential(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrAuth, "ユーザー名またはパスワードが正しくありません")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, newError(ErrAuth, "ユーザー名またはパスワードが正しくありません")
	}

	stripped := user.Strip()
	return &stripped, nil
}

// ResolveUser IDでユーザーを取得（認証情報は除去済み）
func (s *authService) ResolveUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "ユーザーが見つかりません")
		}
		return nil, err
	}
	stripped := user.Strip()
	return &stripped, nil
}

// ValidateToken トークンを検証
func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// 署名方法を確認
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.config.Auth.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("無効なトークンです")
	}

	return claims, nil
}

// GetUserFromToken トークンからユーザーを取得
func (s *authService) GetUserFromToken(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.Id)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, errors.New("失効したトークンです")
	}

	return s.ResolveUser(ctx, claims.UserID)
}

// generateToken JWTトークンを生成
func (s *authService) generateToken(userID uint) (string, error) {
	now := time.Now()

	claims := &Claims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			ExpiresAt: now.Add(s.config.Auth.TokenExpiry).Unix(),
			IssuedAt:  now.Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Auth.JWTSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
