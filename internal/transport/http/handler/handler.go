// Package handler 各业务的 HTTP 入口；只做参数提取，规则都在 service
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"plantcare-community/internal/service"
	mdw "plantcare-community/internal/transport/http/middleware"
)

func atoiOr(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func actorOf(c *gin.Context) service.Actor {
	return service.Actor{UserID: c.GetString(mdw.KeyUserID), Role: c.GetString(mdw.KeyRole)}
}

// orSelf 请求体未给出 id 时回落到登录用户
func orSelf(c *gin.Context, id string) string {
	if id != "" {
		return id
	}
	return c.GetString(mdw.KeyUserID)
}
