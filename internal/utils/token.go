package utils

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// ExtractToken Bearerトークン、無ければセッションCookieからトークンを取り出す。
// Bearer以外のAuthorizationヘッダーは無視する。
func ExtractToken(ctx *gin.Context, cookieName string) (string, bool) {
	if authHeader := ctx.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		token := strings.TrimPrefix(authHeader, "Bearer ")
		return token, token != ""
	}

	token, err := ctx.Cookie(cookieName)
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}
