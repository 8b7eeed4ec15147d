package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SketchShifter/social_backend/internal/logger"
	"github.com/SketchShifter/social_backend/internal/models"
	"github.com/SketchShifter/social_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testLog = logger.Discard()

type mockUserService struct{ mock.Mock }

func (m *mockUserService) GetProfile(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockUserService) GetByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	args := m.Called(ctx, ids)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID uint, input services.UpdateProfileInput) (*models.User, error) {
	args := m.Called(ctx, userID, input)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type mockFollowService struct{ mock.Mock }

func (m *mockFollowService) ToggleFollow(ctx context.Context, actorID, targetID uint) (services.FollowState, error) {
	args := m.Called(ctx, actorID, targetID)
	return args.Get(0).(services.FollowState), args.Error(1)
}

type mockSuggestionService struct{ mock.Mock }

func (m *mockSuggestionService) Suggest(ctx context.Context, requesterID uint) ([]models.User, error) {
	args := m.Called(ctx, requesterID)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

type mockNotificationService struct{ mock.Mock }

func (m *mockNotificationService) FetchAndMarkRead(ctx context.Context, userID uint) ([]models.Notification, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]models.Notification)
	return list, args.Error(1)
}

func (m *mockNotificationService) ClearFor(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Signup(ctx context.Context, fullName, username, email, password string) (*models.User, string, error) {
	args := m.Called(ctx, fullName, username, email, password)
	user, _ := args.Get(0).(*models.User)
	return user, args.String(1), args.Error(2)
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	args := m.Called(ctx, username, password)
	user, _ := args.Get(0).(*models.User)
	return user, args.String(1), args.Error(2)
}

func (m *mockAuthService) LoginWithOAuth(ctx context.Context, profile *services.OAuthProfile) (*models.User, string, error) {
	args := m.Called(ctx, profile)
	user, _ := args.Get(0).(*models.User)
	return user, args.String(1), args.Error(2)
}

func (m *mockAuthService) Logout(ctx context.Context, tokenString string) error {
	return m.Called(ctx, tokenString).Error(0)
}

func (m *mockAuthService) VerifyCredential(ctx context.Context, username, password string) (*models.User, error) {
	args := m.Called(ctx, username, password)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockAuthService) ResolveUser(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockAuthService) ValidateToken(tokenString string) (*services.Claims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(*services.Claims)
	return claims, args.Error(1)
}

func (m *mockAuthService) GetUserFromToken(ctx context.Context, tokenString string) (*models.User, error) {
	args := m.Called(ctx, tokenString)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type mockOAuthProvider struct{ mock.Mock }

func (m *mockOAuthProvider) AuthCodeURL(state string) string {
	return m.Called(state).String(0)
}

func (m *mockOAuthProvider) FetchProfile(ctx context.Context, code string) (*services.OAuthProfile, error) {
	args := m.Called(ctx, code)
	profile, _ := args.Get(0).(*services.OAuthProfile)
	return profile, args.Error(1)
}

func serviceErr(kind error, message string) error {
	return &services.ServiceError{Kind: kind, Message: message}
}

// asUser 認証済みユーザーをコンテキストに設定する
func asUser(user *models.User) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set("user", user)
		ctx.Set("userID", user.ID)
		ctx.Next()
	}
}

func perform(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}
