package controllers

import (
	"errors"
	"net/http"

	"github.com/SketchShifter/social_backend/internal/models"
	"github.com/SketchShifter/social_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError サービスのエラーをステータスコードに変換して返す
func respondError(ctx *gin.Context, log *logrus.Entry, err error) {
	respondErrorWith(ctx, log, err, http.StatusNotFound)
}

// respondErrorWith 見つからない場合のステータスコードを指定して返す
func respondErrorWith(ctx *gin.Context, log *logrus.Entry, err error, notFoundStatus int) {
	_ = ctx.Error(err)

	var serviceErr *services.ServiceError
	if errors.As(err, &serviceErr) {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrNotFound) {
			status = notFoundStatus
		}
		ctx.JSON(status, gin.H{"error": serviceErr.Message})
		return
	}

	// 詳細はサーバー側のログのみに残す
	log.WithError(err).WithFields(logrus.Fields{
		"method": ctx.Request.Method,
		"path":   ctx.FullPath(),
	}).Error("予期しないエラーが発生しました")
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": "サーバーエラーが発生しました"})
}

// currentUser 認証ミドルウェアが保存したユーザーを取得
func currentUser(ctx *gin.Context) (*models.User, bool) {
	value, exists := ctx.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
