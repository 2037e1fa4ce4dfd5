package middleware

import (
	"github.com/gin-gonic/gin"

	"plantcare-community/internal/service"
)

// AuthorLoader 每个请求一个新的作者 loader，请求结束即丢弃
func AuthorLoader(a *service.Authors) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := service.WithAuthorLoader(c.Request.Context(), a.NewLoader())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
