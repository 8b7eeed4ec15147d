package middlewares

import (
	"net/http"

	"github.com/SketchShifter/social_backend/internal/services"
	"github.com/SketchShifter/social_backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 認証ミドルウェア（Bearerトークン または セッションCookie）
func AuthMiddleware(authService services.AuthService, cookieName string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, ok := utils.ExtractToken(ctx, cookieName)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "認証が必要です"})
			ctx.Abort()
			return
		}

		// ユーザーを取得
		user, err := authService.GetUserFromToken(ctx.Request.Context(), tokenString)
		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "無効なトークンです"})
			ctx.Abort()
			return
		}

		// ユーザーをコンテキストに保存
		ctx.Set("user", user)
		ctx.Set("userID", user.ID)
		ctx.Next()
	}
}
