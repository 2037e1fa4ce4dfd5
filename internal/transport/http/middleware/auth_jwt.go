package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"plantcare-community/internal/core/auth"
	resp "plantcare-community/internal/transport/http/response"
)

const (
	KeyUserID = "userId"
	KeyRole   = "role"
	KeyClaims = "claims"
)

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(KeyClaims, claims)
	c.Set(KeyUserID, claims.UID)
	c.Set(KeyRole, claims.Role)
}

func tokenMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingBearer):
		return "missing token"
	case errors.Is(err, auth.ErrTokenExpired):
		return "token expired"
	}
	return "invalid token"
}

// AuthJWT 必须携带有效 token；requireRole 非空时还要求角色匹配
func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := j.ParseHeader(c.GetHeader("Authorization"))
		if err != nil {
			resp.Abort(c, resp.CodeUnauthorized, tokenMessage(err))
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			resp.Abort(c, resp.CodeForbidden, "forbidden")
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth 有 token 就解析，没有就匿名放行；token 无效仍然 401
func OptionalAuth(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if ah == "" {
			c.Next()
			return
		}
		claims, err := j.ParseHeader(ah)
		if err != nil {
			resp.Abort(c, resp.CodeUnauthorized, tokenMessage(err))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}
