package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"plantcare-community/internal/core/auth"
	"plantcare-community/internal/core/config"
	"plantcare-community/internal/core/server"
	"plantcare-community/internal/service"
	mdw "plantcare-community/internal/transport/http/middleware"
	resp "plantcare-community/internal/transport/http/response"
)

const (
	APIPrefix   = "/api/v1/community"
	AdminPrefix = "/admin/v1"
)

// Options engine 公共依赖
type Options struct {
	Log     *zap.Logger
	HTTP    config.HTTP
	JWT     *auth.JWTer
	Authors *service.Authors // nil 时不挂作者 loader（服务层退化为逐次批量）
}

func (o Options) timeout() time.Duration {
	if o.HTTP.RequestTimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(o.HTTP.RequestTimeoutSec) * time.Second
}

// base 两个 engine 共用的中间件链和 /health、/metrics
func base(o Options) *gin.Engine {
	r := server.NewRouter(o.Log, o.HTTP.CORSOrigins)

	r.Use(mdw.RequestID())
	if o.HTTP.RateLimitRPS > 0 {
		r.Use(mdw.RateLimit(rate.Limit(o.HTTP.RateLimitRPS), max(o.HTTP.RateLimitBurst, 1)))
	}
	if o.HTTP.PerIPRPS > 0 {
		r.Use(mdw.RateLimitPerIP(rate.Limit(o.HTTP.PerIPRPS), max(o.HTTP.PerIPBurst, 1)))
	}
	if o.HTTP.MaxInFlight > 0 {
		r.Use(mdw.ConcurrencyLimit(o.HTTP.MaxInFlight))
	}
	if o.HTTP.MaxBodyBytes > 0 {
		r.Use(mdw.MaxBodyBytes(o.HTTP.MaxBodyBytes))
	}
	r.Use(
		mdw.Timeout(o.timeout()),
		mdw.Recovery(o.Log),
		mdw.Metrics(),
		mdw.AccessLog(o.Log),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(func(c *gin.Context) { resp.Abort(c, resp.CodeNotFound, "Route not found") })
	return r
}

// NewAPIEngine 用户端：/api/v1/community 下挂所有 API 模块，token 可选
func NewAPIEngine(o Options, reg *Registry) *gin.Engine {
	r := base(o)

	api := r.Group(APIPrefix)
	api.Use(mdw.OptionalAuth(o.JWT))
	if o.Authors != nil {
		api.Use(mdw.AuthorLoader(o.Authors))
	}
	reg.MountAPI(api)
	return r
}
