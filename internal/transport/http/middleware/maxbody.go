package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "plantcare-community/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小：声明长度超限直接 413；未声明长度的在读取时截断，由 ez 映射为 413
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			resp.Abort(c, resp.CodeTooLarge, "")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
