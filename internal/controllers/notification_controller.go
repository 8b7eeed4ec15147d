package controllers

import (
	"net/http"

	"github.com/SketchShifter/social_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NotificationController 通知に関するコントローラー
type NotificationController struct {
	notificationService services.NotificationService
	log                 *logrus.Entry
}

// NewNotificationController NotificationControllerを作成
func NewNotificationController(notificationService services.NotificationService, log *logrus.Entry) *NotificationController {
	return &NotificationController{
		notificationService: notificationService,
		log:                 log,
	}
}

// List 通知一覧を取得（取得した通知は既読になる）
func (c *NotificationController) List(ctx *gin.Context) {
	u, exists := currentUser(ctx)
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}

	notifications, err := c.notificationService.FetchAndMarkRead(ctx.Request.Context(), u.ID)
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, notifications)
}

// Clear 通知を全て削除
func (c *NotificationController) Clear(ctx *gin.Context) {
	u, exists := currentUser(ctx)
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
		return
	}

	deleted, err := c.notificationService.ClearFor(ctx.Request.Context(), u.ID)
	if err != nil {
		respondError(ctx, c.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "通知を削除しました", "deleted": deleted})
}
