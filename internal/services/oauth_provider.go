package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/SketchShifter/social_backend/internal/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// OAuthProfile 外部プロバイダーから取得したプロフィール
type OAuthProfile struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// OAuthProvider 外部ログインプロバイダー
type OAuthProvider interface {
	AuthCodeURL(state string) string
	FetchProfile(ctx context.Context, code string) (*OAuthProfile, error)
}

// googleProvider Googleの実装
type googleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewGoogleProvider Googleログインを作成（未設定ならnil）
func NewGoogleProvider(cfg config.GoogleOAuthConfig) OAuthProvider {
	if !cfg.Enabled() {
		return nil
	}
	return newGoogleProvider(cfg, google.Endpoint, googleUserInfoURL)
}

func newGoogleProvider(cfg config.GoogleOAuthConfig, endpoint oauth2.Endpoint, userInfoURL string) *googleProvider {
	return &googleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     endpoint,
		},
		userInfoURL: userInfoURL,
	}
}

// AuthCodeURL 同意画面のURL
func (p *googleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// FetchProfile 認可コードをトークンに交換してプロフィールを取得
func (p *googleProvider) FetchProfile(ctx context.Context, code string) (*OAuthProfile, error) {
	if code == "" {
		return nil, newError(ErrAuth, "認可コードがありません")
	}

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("トークン交換に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("プロフィール取得エラー: %d", resp.StatusCode)
	}

	var profile OAuthProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
