package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"silsilah_go/internal/service"
)

const (
	viewerKey  = "viewer"
	sessionKey = "view_session"

	// SessionHeader 浏览会话 id 的请求/响应头
	SessionHeader = "X-View-Session"
	sessionCookie = "view_session"
)

// TokenValidator 令牌校验
type TokenValidator interface {
	Enabled() bool
	ValidateToken(token string) (service.Viewer, error)
}

// ViewerMiddleware 解析可选的 Bearer 令牌，没有令牌的请求按公开访问处理
func ViewerMiddleware(auth TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !auth.Enabled() {
			c.Set(viewerKey, service.Anonymous)
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		viewer, err := auth.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(viewerKey, viewer)
		c.Next()
	}
}

// ViewerFrom 取出当前访问者
func ViewerFrom(c *gin.Context) service.Viewer {
	if v, ok := c.Get(viewerKey); ok {
		if viewer, ok := v.(service.Viewer); ok {
			return viewer
		}
	}
	return service.Anonymous
}

// SessionMiddleware 为每个浏览者分配会话 id，优先使用请求头，其次 cookie
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if id == "" {
			id, _ = c.Cookie(sessionCookie)
		}
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
		}
		c.Header(SessionHeader, id)
		c.Set(sessionKey, id)
		c.Next()
	}
}

// SessionFrom 取出浏览会话 id
func SessionFrom(c *gin.Context) string {
	return c.GetString(sessionKey)
}
