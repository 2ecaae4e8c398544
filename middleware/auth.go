package middleware

import (
	"net/http"
	"strings"

	"github.com/yxlimo/paperhub/models"
	"github.com/yxlimo/paperhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// JWTAuth 中间件：提取 Bearer token -> 校验 -> 注入 user_id / username / role
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := header
		if after, ok := strings.CutPrefix(header, "Bearer "); ok {
			token = after
		}
		if token == "" {
			// websocket 握手拿不到自定义 header，退回 query 参数
			token = c.Query("token")
		}
		if token == "" {
			unauthorized(c, "missing Authorization header")
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			unauthorized(c, "invalid token")
			return
		}
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			unauthorized(c, "invalid token")
			return
		}

		c.Set("user_id", userID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// AdminOnly 必须在 JWTAuth 之后挂载
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "需要管理员权限"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUserID 从上下文取出认证后的用户 id
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
	c.Abort()
}
