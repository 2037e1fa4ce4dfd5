package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"plantcare-community/internal/core/auth"
	"plantcare-community/internal/domain"
	"plantcare-community/internal/service"
	"plantcare-community/internal/transport/http/ez"
	mdw "plantcare-community/internal/transport/http/middleware"
	resp "plantcare-community/internal/transport/http/response"
)

type UserHandler struct {
	svc *service.UserService
	jwt *auth.JWTer
	log *zap.Logger
}

func NewUserHandler(svc *service.UserService, j *auth.JWTer, l *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, jwt: j, log: l}
}

func (h *UserHandler) Priority() int { return 20 }

type authIn struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[struct{}, *domain.UserDetails]{
		Method: http.MethodGet,
		Path:   "/user/:userId",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.UserDetails, error) {
			return h.svc.GetUserDetails(c.Request.Context(), c.Param("userId"))
		},
	})

	// POST /auth {type: signup|login}；注册 201，登录 200
	g.POST("/auth", func(c *gin.Context) {
		var in authIn
		if err := c.ShouldBindJSON(&in); err != nil {
			resp.Abort(c, resp.CodeBadRequest, "invalid request: "+err.Error())
			return
		}
		var (
			out    *service.AuthResult
			err    error
			status = http.StatusOK
		)
		switch strings.ToLower(in.Type) {
		case "signup":
			out, err = h.svc.Signup(c.Request.Context(), service.SignupInput{
				Name: in.Name, Username: in.Username, Email: in.Email, Password: in.Password,
			})
			status = http.StatusCreated
		case "login":
			out, err = h.svc.Login(c.Request.Context(), in.Email, in.Password)
		default:
			err = domain.Validation("Invalid request type")
		}
		if err != nil {
			e.Fail(c, err)
			return
		}
		c.JSON(status, out)
	})

	me := g.Group("", mdw.AuthJWT(h.jwt, ""))
	ez.RegisterAction(ez.New(me, h.log), ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.svc.Me(c.Request.Context(), c.GetString(mdw.KeyUserID))
		},
	})
}
