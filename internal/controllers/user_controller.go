package controllers

import (
	"net/http"
	"strconv"

	"github.com/SketchShifter/social_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UserController ユーザーに関するコントローラー
type UserController struct {
	userService       services.UserService
	followService     services.FollowService
	suggestionService services.SuggestionService
	log               *logrus.Entry
}

// NewUserController UserControllerを作成
func NewUserController(
	userService services.UserService,
	followService services.FollowService,
	suggestionService services.SuggestionService,
	log *logrus.Entry,
) *UserController {
	return &UserController{
		userService:       userService,
		followService:     followService,
		suggestionService: suggestionService,
		log:               log,
	}
}

// UpdateProfileRequest プロフィール更新リクエスト
type UpdateProfileRequest struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	Bio             string `json:"bio"`
	Link            string `json:"link"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ProfileImg      string `json:"profileImg"`
	CoverImg        string `json:"coverImg"`
}

// ConnectionsRequest ユーザー一括取得リクエスト
type ConnectionsRequest struct {
	UserIDs *[]uint `json:"userIds"`
}

// GetProfile ユーザー名でプロフィールを取得
func (c *UserController) GetProfile(ctx *gin.Context) {
	user, err := c.userService.GetProfile(ctx.Request.Context(), ctx.Param("username"))
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// GetSuggested おすすめユーザーを取得
func (c *UserController) GetSuggested(ctx *gin.Context) {
	u, exists := currentUser(ctx)
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}

	users, err := c.suggestionService.Suggest(ctx.Request.Context(), u.ID)
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, users)
}

// FollowUnfollow フォロー/フォロー解除を切り替える
func (c *UserController) FollowUnfollow(ctx *gin.Context) {
	targetID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "無効なIDです"})
		return
	}

	u, exists := currentUser(ctx)
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}

	state, err := c.followService.ToggleFollow(ctx.Request.Context(), u.ID, uint(targetID))
	if err != nil {
		// 対象ユーザーが存在しない場合も400
		respondErrorWith(ctx, c.log, err, http.StatusBadRequest)
		return
	}

	message := "フォローを解除しました"
	if state == services.StateFollowed {
		message = "フォローしました"
	}
	ctx.JSON(http.StatusOK, gin.H{"message": message, "state": state})
}

// UpdateProfile 自分のプロフィールを更新
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	u, exists := currentUser(ctx)
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}

	var req UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "リクエストの形式が正しくありません"})
		return
	}

	updatedUser, err := c.userService.UpdateProfile(ctx.Request.Context(), u.ID, services.UpdateProfileInput{
		FullName:        req.FullName,
		Email:           req.Email,
		Username:        req.Username,
		Bio:             req.Bio,
		Link:            req.Link,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ProfileImg:      req.ProfileImg,
		CoverImg:        req.CoverImg,
	})
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, updatedUser)
}

// Connections 複数ユーザーを一括取得（フォロワー/フォロー中一覧用）
func (c *UserController) Connections(ctx *gin.Context) {
	var req ConnectionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.UserIDs == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "userIdsにはユーザーIDの配列を指定してください"})
		return
	}

	c.log.WithFields(logrus.Fields{
		"action": ctx.Param("action"),
		"count":  len(*req.UserIDs),
	}).Debug("ユーザーを一括取得します")

	users, err := c.userService.GetByIDs(ctx.Request.Context(), *req.UserIDs)
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, users)
}
