package controllers

import (
	"net/http"

	"github.com/SketchShifter/social_backend/internal/config"
	"github.com/SketchShifter/social_backend/internal/services"
	"github.com/SketchShifter/social_backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// oauthStateCookie Googleログインのstateを保存するCookie
const oauthStateCookie = "oauth_state"

// AuthController 認証に関するコントローラー
type AuthController struct {
	authService services.AuthService
	google      services.OAuthProvider // nil ならGoogleログイン無効
	cfg         *config.Config
	log         *logrus.Entry
}

// NewAuthController AuthControllerを作成
func NewAuthController(authService services.AuthService, google services.OAuthProvider, cfg *config.Config, log *logrus.Entry) *AuthController {
	return &AuthController{
		authService: authService,
		google:      google,
		cfg:         cfg,
		log:         log,
	}
}

// SignupRequest ユーザー登録リクエスト
type SignupRequest struct {
	FullName string `json:"fullName"`
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest ログインリクエスト
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse 認証レスポンス
type AuthResponse struct {
	User  interface{} `json:"user"`
	Token string      `json:"token"`
}

// Signup ユーザー登録
func (c *AuthController) Signup(ctx *gin.Context) {
	var req SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "ユーザー名・メールアドレス・パスワードは必須です"})
		return
	}

	user, token, err := c.authService.Signup(ctx.Request.Context(), req.FullName, req.Username, req.Email, req.Password)
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}

	c.setSessionCookie(ctx, token)
	ctx.JSON(http.StatusCreated, AuthResponse{
		User:  user,
		Token: token,
	})
}

// Login ログイン
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "ユーザー名とパスワードは必須です"})
		return
	}

	user, token, err := c.authService.Login(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}

	c.setSessionCookie(ctx, token)
	ctx.JSON(http.StatusOK, AuthResponse{
		User:  user,
		Token: token,
	})
}

// Logout ログアウト
func (c *AuthController) Logout(ctx *gin.Context) {
	token, _ := utils.ExtractToken(ctx, c.cfg.Auth.CookieName)

	if err := c.authService.Logout(ctx.Request.Context(), token); err != nil {
		// 失効に失敗してもCookieは削除する
		c.log.WithError(err).Warn("トークンの失効に失敗しました")
	}

	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(c.cfg.Auth.CookieName, "", -1, "/", "", c.cfg.IsProduction(), true)
	ctx.JSON(http.StatusOK, gin.H{"message": "ログアウトしました"})
}

// GoogleLogin Googleの同意画面へリダイレクト
func (c *AuthController) GoogleLogin(ctx *gin.Context) {
	if c.google == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Googleログインは有効になっていません"})
		return
	}

	state := uuid.NewString()
	// コールバックはGoogleからのトップレベル遷移なのでLax
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(oauthStateCookie, state, 600, "/api/auth/google", "", c.cfg.IsProduction(), true)
	ctx.Redirect(http.StatusFound, c.google.AuthCodeURL(state))
}

// GoogleCallback Googleからのコールバック。成功・失敗ともにフロントエンドへリダイレクト
func (c *AuthController) GoogleCallback(ctx *gin.Context) {
	if c.google == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Googleログインは有効になっていません"})
		return
	}

	state, _ := ctx.Cookie(oauthStateCookie)
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(oauthStateCookie, "", -1, "/api/auth/google", "", c.cfg.IsProduction(), true)

	if state == "" || ctx.Query("state") != state {
		c.log.Warn("Googleログインのstateが一致しません")
		ctx.Redirect(http.StatusFound, c.cfg.Google.FailureRedirect)
		return
	}
	if reason := ctx.Query("error"); reason != "" {
		c.log.WithField("reason", reason).Info("Googleログインがキャンセルされました")
		ctx.Redirect(http.StatusFound, c.cfg.Google.FailureRedirect)
		return
	}

	profile, err := c.google.FetchProfile(ctx.Request.Context(), ctx.Query("code"))
	if err != nil {
		c.log.WithError(err).Warn("Googleプロフィールの取得に失敗しました")
		ctx.Redirect(http.StatusFound, c.cfg.Google.FailureRedirect)
		return
	}

	user, token, err := c.authService.LoginWithOAuth(ctx.Request.Context(), profile)
	if err != nil {
		c.log.WithError(err).Warn("Googleログインに失敗しました")
		ctx.Redirect(http.StatusFound, c.cfg.Google.FailureRedirect)
		return
	}

	c.log.WithField("user_id", user.ID).Info("Googleでログインしました")
	c.setSessionCookie(ctx, token)
	ctx.Redirect(http.StatusFound, c.cfg.Google.SuccessRedirect)
}

// GetMe 現在のユーザー情報を取得
func (c *AuthController) GetMe(ctx *gin.Context) {
	user, exists := currentUser(ctx)
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// setSessionCookie セッショントークンをhttpOnly Cookieに保存
func (c *AuthController) setSessionCookie(ctx *gin.Context, token string) {
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(
		c.cfg.Auth.CookieName,
		token,
		int(c.cfg.Auth.TokenExpiry.Seconds()),
		"/",
		"",
		c.cfg.IsProduction(),
		true,
	)
}
