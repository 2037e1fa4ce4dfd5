package ez

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"plantcare-community/internal/domain"
)

func init() { gin.SetMode(gin.TestMode) }

type echoIn struct {
	Name string `json:"name" binding:"required"`
}

func newEngine(fail error) *gin.Engine {
	r := gin.New()
	e := New(r.Group(""), nil)
	RegisterAction(e, Action[echoIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/echo",
		Binder: BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *echoIn) (gin.H, error) {
			if fail != nil {
				return nil, fail
			}
			return gin.H{"name": in.Name}, nil
		},
	})
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestActionSuccessStatus(t *testing.T) {
	w := post(newEngine(nil), `{"name":"fern"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"name":"fern"}`, w.Body.String())
}

func TestActionBindError(t *testing.T) {
	w := post(newEngine(nil), `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":400`)
}

func TestActionErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{domain.Validation("content is required"), 400, "content is required"},
		{domain.Unauthorized("nope"), 401, "nope"},
		{domain.Forbidden("not yours"), 403, "not yours"},
		{domain.ErrPostNotFound, 404, "Post not found"},
		{domain.Conflict("exists"), 409, "exists"},
		{domain.Internal("list posts", errors.New("dial tcp: refused")), 500, "Internal Server Error"},
		{errors.New("raw"), 500, "Internal Server Error"},
		{domain.Wrap("list posts", fmt.Errorf("query: %w", context.DeadlineExceeded)), 504, "Request timeout"},
		{context.DeadlineExceeded, 504, "Request timeout"},
	}
	for _, tt := range tests {
		w := post(newEngine(tt.err), `{"name":"x"}`)
		assert.Equal(t, tt.code, w.Code, tt.err.Error())
		assert.Contains(t, w.Body.String(), `"message":"`+tt.msg+`"`)
	}
}

func TestStatusOfDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()
	assert.Equal(t, http.StatusGatewayTimeout, StatusOf(domain.Wrap("get post", ctx.Err())))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(domain.Wrap("get post", context.Canceled)))
}

func TestActionAuthAndRoles(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if uid := c.GetHeader("X-User"); uid != "" {
			c.Set("userId", uid)
			c.Set("role", c.GetHeader("X-Role"))
		}
	})
	e := New(r.Group(""), nil)
	RegisterAction(e, Action[struct{}, gin.H]{
		Method: http.MethodGet, Path: "/admin", Auth: true, Roles: []string{"admin"},
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) { return gin.H{"ok": true}, nil },
	})

	call := func(uid, role string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("X-User", uid)
		req.Header.Set("X-Role", role)
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusUnauthorized, call("", ""))
	assert.Equal(t, http.StatusForbidden, call("u1", "user"))
	assert.Equal(t, http.StatusOK, call("a1", "admin"))
}
