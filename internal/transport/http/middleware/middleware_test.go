package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plantcare-community/internal/core/auth"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitReturns429(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(1, 1))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"code":429,"message":"Too many requests"}`, w.Body.String())
}

func TestRateLimitPerIPIsolatesClients(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitPerIP(1, 1))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := func(ip string) *http.Request {
		q := httptest.NewRequest(http.MethodGet, "/", nil)
		q.RemoteAddr = ip + ":1234"
		return q
	}
	assert.Equal(t, http.StatusOK, serve(r, req("10.0.0.1")).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, req("10.0.0.1")).Code)
	assert.Equal(t, http.StatusOK, serve(r, req("10.0.0.2")).Code)
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodyBytes(8))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"far too long"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))).Code)
}

func TestTimeoutReturns504(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/", func(c *gin.Context) { <-c.Request.Context().Done() })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestConcurrencyLimitReturns503WhenCancelled(t *testing.T) {
	r := gin.New()
	r.Use(ConcurrencyLimit(1))
	release := make(chan struct{})
	started := make(chan struct{})
	r.GET("/", func(c *gin.Context) {
		close(started)
		<-release
		c.Status(http.StatusOK)
	})

	done := make(chan int)
	go func() { done <- serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code }()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	close(release)
	assert.Equal(t, http.StatusOK, <-done)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":500,"message":"internal error"}`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "abc")
	w := serve(r, req)
	assert.Equal(t, "abc", w.Header().Get(KeyRequestID))
	assert.Equal(t, "abc", w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(KeyRequestID), 36)
}

func TestAuth(t *testing.T) {
	j := &auth.JWTer{Secret: []byte("s"), Issuer: "test", TTL: time.Hour}
	userTok, err := j.Issue("u1", "user")
	require.NoError(t, err)
	adminTok, err := j.Issue("a1", "admin")
	require.NoError(t, err)

	r := gin.New()
	echo := func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyUserID)+"/"+c.GetString(KeyRole)) }
	r.GET("/opt", OptionalAuth(j), echo)
	r.GET("/req", AuthJWT(j, ""), echo)
	r.GET("/admin", AuthJWT(j, "admin"), echo)

	get := func(path, tok string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
		return serve(r, req)
	}

	assert.Equal(t, "/", get("/opt", "").Body.String())
	assert.Equal(t, "u1/user", get("/opt", userTok).Body.String())
	assert.Equal(t, http.StatusUnauthorized, get("/opt", "garbage").Code)

	assert.Equal(t, http.StatusUnauthorized, get("/req", "").Code)
	assert.Equal(t, "u1/user", get("/req", userTok).Body.String())

	assert.Equal(t, http.StatusForbidden, get("/admin", userTok).Code)
	assert.Equal(t, "a1/admin", get("/admin", adminTok).Body.String())
}
